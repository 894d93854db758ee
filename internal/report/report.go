// Package report holds students' exam reports and the stores that persist them.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidReport is returned when a report fails validation.
	ErrInvalidReport = errors.New("invalid report")
)

// ExamReport is the stored result of one generated exam.
type ExamReport struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Subject   string `json:"subject"` // subject display name
	Score     int    `json:"score"`
	// SelectedPath is the level-to-value mapping chosen before the exam was
	// generated, kept as raw JSON because older reports may hold anything.
	SelectedPath json.RawMessage `json:"selectedPath"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Validate checks the fields required to store a report.
func (r ExamReport) Validate() error {
	if r.StudentID == "" {
		return fmt.Errorf("%w: student id is required", ErrInvalidReport)
	}
	if r.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidReport)
	}
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("%w: score must be between 0 and 100, got %d", ErrInvalidReport, r.Score)
	}
	if len(r.SelectedPath) > 0 && !json.Valid(r.SelectedPath) {
		return fmt.Errorf("%w: selected path is not valid JSON", ErrInvalidReport)
	}
	return nil
}

// Path parses the report's selected path.
func (r ExamReport) Path() (map[string]string, bool) {
	return ParseSelectedPath(r.SelectedPath)
}

// ParseSelectedPath decodes a stored selected path. It returns false when the
// value is missing, null, or not a JSON object. Null and non-string values
// inside the object are dropped.
func ParseSelectedPath(raw []byte) (map[string]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}

	path := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			path[k] = s
		}
	}
	return path, true
}

// EncodePath serialises a selected path for storage.
func EncodePath(path map[string]string) json.RawMessage {
	if path == nil {
		return nil
	}
	b, _ := json.Marshal(path)
	return b
}
