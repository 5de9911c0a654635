package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"onemax/internal/harness"
	"onemax/internal/model"
)

// WriteResultsCSV writes the aggregate results file: one benchmark line
// per session, language id first, no header. The file is the same shape
// every language implementation appends to.
func WriteResultsCSV(path string, records []model.RunRecord) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, record := range records {
		line := harness.CSVLine(record.LanguageID, record.TimingsMS)
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

// AppendResultsLine appends a single session to an aggregate results
// file, creating it if needed.
func AppendResultsLine(path string, record model.RunRecord) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = fmt.Fprintln(file, harness.CSVLine(record.LanguageID, record.TimingsMS))
	return err
}

// WriteRunRecordsJSONL writes sessions as line-delimited JSON, one
// record per line.
func WriteRunRecordsJSONL(path string, records []model.RunRecord) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := file.Write(data); err != nil {
			return err
		}
		if _, err := file.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}
