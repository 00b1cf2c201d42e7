package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/knotsim/internal/chain"
	"github.com/san-kum/knotsim/internal/diagnose"
	"github.com/san-kum/knotsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrMalformedFrames = errors.New("storage: malformed frames file")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes the settings a run was made with.
type RunInfo struct {
	Preset       string
	Mode         string
	Ratio        float64
	StickRadius  float64
	Closed       bool
	FixedLengths bool
	Count        int
	Seed         int64
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Preset       string             `json:"preset"`
	Mode         string             `json:"mode"`
	Ratio        float64            `json:"ratio"`
	StickRadius  float64            `json:"stick_radius"`
	Closed       bool               `json:"closed"`
	FixedLengths bool               `json:"fixed_lengths"`
	Count        int                `json:"count"`
	Frames       int                `json:"frames"`
	Seed         int64              `json:"seed"`
	Timestamp    time.Time          `json:"timestamp"`
	Metrics      map[string]float64 `json:"metrics"`
	Findings     []string           `json:"findings"`
	Final        [][3]float64       `json:"final"`
}

// FinalPositions returns the chain as it stood when the run ended.
func (m *RunMetadata) FinalPositions() chain.Positions {
	return chain.FromPoints(m.Final)
}

// FrameRecord is one row of frames.csv.
type FrameRecord struct {
	Frame     int
	Violation float64
	Positions chain.Positions
}

func (s *Store) newRunDir(preset string) (string, string, error) {
	base := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			return runID, runDir, os.MkdirAll(runDir, 0755)
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	preset := info.Preset
	if preset == "" {
		preset = "custom"
	}
	runID, runDir, err := s.newRunDir(preset)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Preset:       preset,
		Mode:         info.Mode,
		Ratio:        info.Ratio,
		StickRadius:  info.StickRadius,
		Closed:       info.Closed,
		FixedLengths: info.FixedLengths,
		Count:        info.Count,
		Frames:       result.Frames,
		Seed:         info.Seed,
		Timestamp:    time.Now(),
		Metrics:      result.Metrics,
		Findings:     diagnose.Strings(result.Findings),
		Final:        result.Final.Points(),
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeFrames(w, result); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// writeFrames emits one row per frame. Coordinates are only present when
// the run recorded its trajectory; Trajectory[0] is the starting chain and
// has no row.
func writeFrames(w *csv.Writer, result *sim.Result) error {
	count := 0
	if len(result.Trajectory) > 1 {
		count = len(result.Trajectory[1])
	}

	header := []string{"frame", "violation"}
	for i := 0; i < count; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, v := range result.Violations {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(v, 'g', 10, 64)}
		if i+1 < len(result.Trajectory) {
			for _, p := range result.Trajectory[i+1] {
				for _, c := range p {
					row = append(row, strconv.FormatFloat(c, 'f', 6, 64))
				}
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns saved runs, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// FramesPath is the location of a run's frames.csv.
func (s *Store) FramesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, framesFile)
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(s.FramesPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		rec, err := parseFrame(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		frames = append(frames, rec)
	}

	return frames, nil
}

func parseFrame(record []string) (FrameRecord, error) {
	if len(record) < 2 || (len(record)-2)%3 != 0 {
		return FrameRecord{}, ErrMalformedFrames
	}
	frame, err := strconv.Atoi(record[0])
	if err != nil {
		return FrameRecord{}, fmt.Errorf("%w: %v", ErrMalformedFrames, err)
	}
	violation, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return FrameRecord{}, fmt.Errorf("%w: %v", ErrMalformedFrames, err)
	}

	rec := FrameRecord{Frame: frame, Violation: violation}
	coords := record[2:]
	if len(coords) > 0 {
		rec.Positions = make(chain.Positions, len(coords)/3)
		for k, c := range coords {
			v, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return FrameRecord{}, fmt.Errorf("%w: %v", ErrMalformedFrames, err)
			}
			rec.Positions[k/3][k%3] = v
		}
	}
	return rec, nil
}
