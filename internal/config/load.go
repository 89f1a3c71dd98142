package config

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// Load reads and decodes a run file from disk.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &run, nil
}
