package storage

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"recordopt/pkg/records"
)

// FileSource reads a JSON array of records from disk.
type FileSource struct {
	Path string
}

// NewFileSource returns a Source backed by a JSON file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Read(ctx context.Context) (records.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.Path, err)
	}

	var recs []*records.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", s.Path, err)
	}
	return records.Collection(recs), nil
}

// FileSink writes records as an indented JSON array.
type FileSink struct {
	Path string
}

// NewFileSink returns a Sink that writes a JSON file at path, replacing any
// existing content.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Write(ctx context.Context, recs records.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recs == nil {
		recs = records.Collection{}
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode records: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", s.Path, err)
	}
	return nil
}
