// Package linter runs the external template linter and turns its JSON report
// into findings.
package linter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sevigo/lint-warden/internal/core"
)

// ErrMalformedReport is returned when the linter output cannot be trusted.
// Dropping findings silently would make a failing run look clean.
var ErrMalformedReport = errors.New("malformed linter report")

// report mirrors `erb_lint --format json`.
type report struct {
	Files *[]fileReport `json:"files"`
}

type fileReport struct {
	Path     string    `json:"path"`
	Offenses []offense `json:"offenses"`
}

type offense struct {
	Linter   string   `json:"linter"`
	Message  string   `json:"message"`
	Location location `json:"location"`
}

type location struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	LastLine    int `json:"last_line"`
	LastColumn  int `json:"last_column"`
}

// ParseReport converts the linter's JSON output into findings, keeping the
// order of files and offenses as reported.
func ParseReport(data []byte) ([]core.Finding, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedReport)
	}

	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}
	if r.Files == nil {
		return nil, fmt.Errorf("%w: missing \"files\" key", ErrMalformedReport)
	}

	findings := []core.Finding{}
	for _, file := range *r.Files {
		if file.Path == "" && len(file.Offenses) > 0 {
			return nil, fmt.Errorf("%w: offenses reported without a path", ErrMalformedReport)
		}
		for _, o := range file.Offenses {
			// Multi-line offenses are anchored on their first line only.
			if o.Location.StartLine < 1 {
				return nil, fmt.Errorf("%w: offense %q in %s has no start line", ErrMalformedReport, o.Linter, file.Path)
			}
			findings = append(findings, core.Finding{
				Path:    file.Path,
				Line:    o.Location.StartLine,
				Rule:    o.Linter,
				Message: o.Message,
			})
		}
	}
	return findings, nil
}
