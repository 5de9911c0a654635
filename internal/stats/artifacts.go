package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"onemax/internal/model"
)

const runIndexFile = "run_index.json"

// RunIndexEntry is one line of the benchmark directory's index: enough
// to list sessions without opening each record.
type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Language     string  `json:"language"`
	LanguageID   string  `json:"language_id"`
	Runs         int     `json:"runs"`
	BestFitness  int     `json:"best_fitness"`
	FastestMS    float64 `json:"fastest_ms"`
	MeanMS       float64 `json:"mean_ms"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// NewRunIndexEntry derives an index line from a persisted session.
func NewRunIndexEntry(record model.RunRecord) RunIndexEntry {
	best := 0
	for _, outcome := range record.Outcomes {
		if outcome.BestFitness > best {
			best = outcome.BestFitness
		}
	}
	summary := SummarizeTimings(record.TimingsMS)
	return RunIndexEntry{
		RunID:        record.RunID,
		Language:     record.Language,
		LanguageID:   record.LanguageID,
		Runs:         len(record.TimingsMS),
		BestFitness:  best,
		FastestMS:    summary.MinMS,
		MeanMS:       summary.MeanMS,
		CreatedAtUTC: record.CreatedAtUTC,
	}
}

// WriteRunArtifacts persists one session under <baseDir>/<runID>:
// record.json with the full record, timings.csv with per-run times, and
// fitness_series.csv when the record carries a generation history.
func WriteRunArtifacts(baseDir string, record model.RunRecord) (string, error) {
	if record.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, record.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "record.json"), record); err != nil {
		return "", err
	}
	if err := WriteTimingsCSV(runDir, record.TimingsMS); err != nil {
		return "", err
	}
	if len(record.BestByGeneration) > 0 {
		if err := WriteFitnessSeries(runDir, record.BestByGeneration); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

// ReadRunRecordArtifact loads the record.json of a stored session.
func ReadRunRecordArtifact(baseDir, runID string) (model.RunRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "record.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, false, err
	}
	return record, true, nil
}

// AppendRunIndex upserts one entry in the shared run index.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// WriteTimingsCSV writes per-run elapsed times, microsecond precision to
// match the benchmark line protocol.
func WriteTimingsCSV(runDir string, timesMS []float64) error {
	path := filepath.Join(runDir, "timings.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"run", "elapsed_ms"}); err != nil {
		return err
	}
	for i, elapsed := range timesMS {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(elapsed, 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadTimingsCSV loads a session's timings.csv.
func ReadTimingsCSV(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "timings.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("timings header must have at least 2 columns")
	}

	times := make([]float64, 0, 32)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("timings row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		times = append(times, value)
	}
	return times, true, nil
}

// WriteFitnessSeries writes the best-fitness-by-generation series of one
// GA run.
func WriteFitnessSeries(runDir string, bestByGeneration []int) error {
	path := filepath.Join(runDir, "fitness_series.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, best := range bestByGeneration {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(best),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadFitnessSeries loads a session's fitness_series.csv.
func ReadFitnessSeries(baseDir, runID string) ([]int, bool, error) {
	path := filepath.Join(baseDir, runID, "fitness_series.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []int{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("fitness series header must have at least 2 columns")
	}

	series := make([]int, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("fitness series row must have at least 2 columns")
		}
		value, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

// ExportRunArtifacts copies a session's artifacts into outDir.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{"record.json", "timings.csv"} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	seriesPath := filepath.Join(src, "fitness_series.csv")
	if _, err := os.Stat(seriesPath); err == nil {
		if err := copyFile(seriesPath, filepath.Join(dst, "fitness_series.csv")); err != nil {
			return "", err
		}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
