package pipeline

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Encode writes p to w with encoding/gob.
func Encode(w io.Writer, p *Pipeline) error {
	if !p.Fitted {
		return ErrNotFitted
	}
	return gob.NewEncoder(w).Encode(p)
}

// Decode reads a pipeline written by Encode.
func Decode(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, err
	}
	if !p.Fitted {
		return nil, ErrNotFitted
	}
	return &p, nil
}

// Save writes p to path. The file is written next to path and renamed into
// place, so a reader never sees a partial model.
func Save(path string, p *Pipeline) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, p); err != nil {
		tmp.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads the pipeline stored at path.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	return p, nil
}
