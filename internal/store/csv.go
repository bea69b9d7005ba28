package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/frame"
)

// CSVSink writes {Dir}/{name}.csv.
type CSVSink struct {
	Dir string
	Log logrus.FieldLogger
}

func (s CSVSink) Save(_ context.Context, ds Dataset) error {
	if ds.Frame.IsEmpty() {
		return nil
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, ds.Name()+".csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, ds.Frame); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"path": path, "rows": ds.Frame.Len()}).Info("saved csv")
	}
	return nil
}

// WriteCSV writes df as CSV: a header row in column order, then one line
// per record.
func WriteCSV(w io.Writer, df *frame.Frame) error {
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func csvBytes(df *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, df); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCSV loads a table written by WriteCSV.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	df, err := frame.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return df, nil
}

// LoadCSV reads {dir}/{name}.csv for ds. A missing file is an empty table.
func LoadCSV(dir string, ds Dataset) (*frame.Frame, error) {
	f, err := os.Open(filepath.Join(dir, ds.Name()+".csv"))
	if os.IsNotExist(err) {
		return frame.Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
