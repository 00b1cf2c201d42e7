package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run        RunMetadata    `json:"run"`
	Violations []float64      `json:"violations"`
	Trajectory [][][3]float64 `json:"trajectory,omitempty"`
}

func NewExportData(meta *RunMetadata, frames []FrameRecord) ExportData {
	data := ExportData{
		Run:        *meta,
		Violations: make([]float64, len(frames)),
	}
	for i, f := range frames {
		data.Violations[i] = f.Violation
		if f.Positions != nil {
			data.Trajectory = append(data.Trajectory, f.Positions.Points())
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

// CopyFrames streams a run's frames.csv to w unchanged.
func (s *Store) CopyFrames(runID string, w io.Writer) error {
	file, err := os.Open(s.FramesPath(runID))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(w, file)
	return err
}
