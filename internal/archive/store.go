package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store persists solved runs under a base directory, one subdirectory per
// run with metadata.json and coverages.csv.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Network     string             `json:"network"`
	Timestamp   time.Time          `json:"timestamp"`
	Backend     string             `json:"backend"`
	Temperature float64            `json:"temperature"`
	Iterations  int                `json:"iterations"`
	Residual    float64            `json:"residual"`
	TOFs        map[string]float64 `json:"tofs,omitempty"`
}

// Save writes one run. Coverage history rows carry the iteration index in
// the first column; names label the remaining columns.
func (s *Store) Save(meta RunMetadata, names []string, history [][]float64) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Network, time.Now().Unix())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "coverages.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := append([]string{"iteration"}, names...)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i, row := range history {
		record := []string{strconv.Itoa(i)}
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'e', 12, 64))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadCoverages reads back the coverage history of a run.
func (s *Store) LoadCoverages(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "coverages.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("archive: run %s has no coverage data", runID)
	}

	names := records[0][1:]
	history := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, err
			}
			row = append(row, v)
		}
		history = append(history, row)
	}
	return names, history, nil
}
