package curriculum

import (
	"fmt"
	"slices"
	"strings"
)

// IssueKind classifies a catalog data-quality finding.
type IssueKind string

const (
	IssueSchema          IssueKind = "schema"
	IssueMissingLevel    IssueKind = "missing_level"
	IssueKnowledgePoints IssueKind = "knowledge_points"
	IssueDuplicatePath   IssueKind = "duplicate_path"
)

// Issue is a data-quality finding on a loaded catalog. Issues never stop a
// tree from being built; offending rows are simply left out of it.
type Issue struct {
	Subject string    `json:"subject"`
	Kind    IssueKind `json:"kind"`
	Row     int       `json:"row"` // -1 when the finding is not tied to one row
	Detail  string    `json:"detail"`
}

func (i Issue) String() string {
	if i.Row < 0 {
		return fmt.Sprintf("%s: %s: %s", i.Subject, i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s: %s: row %d: %s", i.Subject, i.Kind, i.Row, i.Detail)
}

// Validate checks the rows of a subject catalog for missing level values,
// non-array knowledge-point fields and rows that repeat a full path.
func Validate(subject Subject, nodes []Node) []Issue {
	var issues []Issue
	firstRow := make(map[string]int)

	for row, n := range nodes {
		if !n.Complete(subject.Levels) {
			issues = append(issues, Issue{
				Subject: subject.ID,
				Kind:    IssueMissingLevel,
				Row:     row,
				Detail:  fmt.Sprintf("missing value for one of %s", strings.Join(subject.Levels, ", ")),
			})
			continue
		}
		if !n.HasPoints {
			issues = append(issues, Issue{
				Subject: subject.ID,
				Kind:    IssueKnowledgePoints,
				Row:     row,
				Detail:  KnowledgePointField + " is not an array",
			})
		}

		key := describePath(n, subject.Levels)
		first, seen := firstRow[key]
		if !seen {
			firstRow[key] = row
			continue
		}
		detail := fmt.Sprintf("repeats path %s of row %d", key, first)
		if !slices.Equal(nodes[first].KnowledgePoints, n.KnowledgePoints) {
			detail += " with different knowledge points"
		}
		issues = append(issues, Issue{
			Subject: subject.ID,
			Kind:    IssueDuplicatePath,
			Row:     row,
			Detail:  detail,
		})
	}

	return issues
}

func describePath(n Node, levels []string) string {
	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = level + "=" + n.Values[level]
	}
	return strings.Join(parts, "/")
}
