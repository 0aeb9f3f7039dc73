package review

import (
	"encoding/json"
	"fmt"
	"os"
)

// Finding is one analyzer result: a message about a line of a file in its
// post-change form. Findings arrive from an external analysis step; the
// planner only decides which of them still need a comment.
type Finding struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// LoadFindings reads a JSON array of findings from path.
func LoadFindings(path string) ([]Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings file: %w", err)
	}

	var findings []Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("failed to parse findings file %s: %w", path, err)
	}

	return findings, nil
}
