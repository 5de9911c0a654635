package storage

import (
	"encoding/json"
	"errors"

	"onemax/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRunRecord(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRunRecord(data []byte) (model.RunRecord, error) {
	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return record, nil
}

func EncodeLanguageSummary(s model.LanguageSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeLanguageSummary(data []byte) (model.LanguageSummary, error) {
	var summary model.LanguageSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.LanguageSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.LanguageSummary{}, err
	}
	return summary, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
