package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// tuneLog streams one CSV row per evaluation: eval, fitness, then one
// column per parameter in ParamVector order.
type tuneLog struct {
	f *os.File
	w *csv.Writer
}

func newTuneLog(path string, pv *ParamVector) (*tuneLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating tune log: %w", err)
	}
	tl := &tuneLog{f: f, w: csv.NewWriter(f)}

	header := []string{"eval", "fitness"}
	for _, spec := range pv.Specs {
		header = append(header, spec.Name)
	}
	if err := tl.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing tune log header: %w", err)
	}
	return tl, nil
}

// write appends a row and flushes it so a killed run keeps its history.
func (tl *tuneLog) write(eval int, fitness float64, values []float64) error {
	row := make([]string, 0, len(values)+2)
	row = append(row, strconv.Itoa(eval), strconv.FormatFloat(fitness, 'f', 6, 64))
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := tl.w.Write(row); err != nil {
		return fmt.Errorf("writing tune log: %w", err)
	}
	tl.w.Flush()
	if err := tl.w.Error(); err != nil {
		return fmt.Errorf("flushing tune log: %w", err)
	}
	return nil
}

// close flushes and closes the file, reporting the first error.
func (tl *tuneLog) close() error {
	tl.w.Flush()
	if err := tl.w.Error(); err != nil {
		tl.f.Close()
		return fmt.Errorf("flushing tune log: %w", err)
	}
	if err := tl.f.Close(); err != nil {
		return fmt.Errorf("closing tune log: %w", err)
	}
	return nil
}
