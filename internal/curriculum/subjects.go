package curriculum

import (
	"errors"
	"slices"
)

// Subject identifiers.
const (
	Chinese  = "chinese"
	English  = "english"
	Math     = "math"
	Computer = "computer"
)

// ErrUnknownSubject is returned when a subject id or display name is not recognised.
var ErrUnknownSubject = errors.New("unknown subject")

// Subject describes one exam subject and the ordered levels its catalog is grouped by.
type Subject struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Levels []string `json:"levels"`
}

var subjects = []Subject{
	{ID: Chinese, Name: "大学语文", Levels: []string{"板块", "章", "节"}},
	{ID: English, Name: "大学英语", Levels: []string{"板块", "题型", "章", "节"}},
	{ID: Math, Name: "高等数学", Levels: []string{"章", "节"}},
	{ID: Computer, Name: "计算机基础", Levels: []string{"章", "节"}},
}

// Subjects returns the fixed subject list in display order.
func Subjects() []Subject {
	out := make([]Subject, len(subjects))
	for i, s := range subjects {
		out[i] = s.clone()
	}
	return out
}

// LookupSubject resolves a subject by internal id or display name.
func LookupSubject(key string) (Subject, bool) {
	for _, s := range subjects {
		if s.ID == key || s.Name == key {
			return s.clone(), true
		}
	}
	return Subject{}, false
}

// Levels returns the ordered level list for a subject id or display name,
// or nil when the subject is unknown.
func Levels(key string) []string {
	s, ok := LookupSubject(key)
	if !ok {
		return nil
	}
	return s.Levels
}

func (s Subject) clone() Subject {
	s.Levels = slices.Clone(s.Levels)
	return s
}
