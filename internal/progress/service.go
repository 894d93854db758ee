// Package progress assembles a student's knowledge-tree progress view.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
	"github.com/p-n-ai/pai-progress/internal/knowledge"
	"github.com/p-n-ai/pai-progress/internal/report"
)

// Catalog supplies the catalog rows of a subject.
type Catalog interface {
	Nodes(subject string) []curriculum.Node
}

// Service builds trees and progress payloads per request. It holds no
// per-request state, so one Service serves concurrent requests.
type Service struct {
	catalog Catalog
	store   report.Store
}

// NewService creates a progress service.
func NewService(catalog Catalog, store report.Store) *Service {
	return &Service{catalog: catalog, store: store}
}

// TaggedReport is an exam report annotated with the section it counts toward.
type TaggedReport struct {
	ID           string          `json:"id"`
	Score        int             `json:"score"`
	CreatedAt    time.Time       `json:"createdAt"`
	SelectedPath json.RawMessage `json:"selectedPath"`
	// SectionKey is nil when the report's path does not resolve to a section.
	SectionKey      *string `json:"sectionKey"`
	KnowledgePoints int     `json:"knowledgePoints"`
}

// Payload is the progress view of one student in one subject.
type Payload struct {
	Tree          knowledge.Tree                     `json:"tree"`
	SectionStatus map[string]knowledge.SectionStatus `json:"sectionStatus"`
	Reports       []TaggedReport                     `json:"reports"`
	Summary       knowledge.Summary                  `json:"summary"`
}

// Query selects a progress view.
type Query struct {
	StudentID string
	Subject   string // id or display name
	// SectionKey, when set, limits Reports to the reports of that section.
	SectionKey string
}

// NewReport is the input for recording an exam report.
type NewReport struct {
	Subject      string            `json:"subject"`
	Score        *int              `json:"score"`
	SelectedPath map[string]string `json:"selectedPath"`
}

// KnowledgePoints is the knowledge-point lookup result for a path.
type KnowledgePoints struct {
	Count  int      `json:"count"`
	Points []string `json:"points"`
}

func emptyPayload() Payload {
	return Payload{
		Tree:          knowledge.EmptyTree(),
		SectionStatus: map[string]knowledge.SectionStatus{},
		Reports:       []TaggedReport{},
	}
}

// Tree builds the knowledge tree of a subject. Unknown subjects yield an empty tree.
func (s *Service) Tree(subject string) knowledge.Tree {
	sub, ok := curriculum.LookupSubject(subject)
	if !ok {
		return knowledge.EmptyTree()
	}
	return knowledge.BuildTree(s.catalog.Nodes(sub.ID), sub)
}

// Progress builds the tree of a subject and overlays the student's reports.
// An unknown subject produces an empty payload rather than an error; only a
// failure to read reports is returned.
func (s *Service) Progress(ctx context.Context, q Query) (Payload, error) {
	sub, ok := curriculum.LookupSubject(q.Subject)
	if !ok {
		slog.Debug("progress requested for unknown subject", "subject", q.Subject)
		return emptyPayload(), nil
	}

	nodes := s.catalog.Nodes(sub.ID)
	tree := knowledge.BuildTree(nodes, sub)

	reports, err := s.store.ListReports(ctx, q.StudentID, sub.Name)
	if err != nil {
		return Payload{}, fmt.Errorf("list reports: %w", err)
	}

	attempts := make([]knowledge.Attempt, 0, len(reports))
	tagged := make([]TaggedReport, 0, len(reports))
	skipped := 0
	for _, r := range reports {
		path, _ := r.Path()
		attempts = append(attempts, knowledge.Attempt{Path: path, Score: r.Score})

		t := TaggedReport{
			ID:           r.ID,
			Score:        r.Score,
			CreatedAt:    r.CreatedAt,
			SelectedPath: r.SelectedPath,
		}
		if key, ok := knowledge.ResolveKey(path, sub.Levels); ok {
			t.SectionKey = &key
			t.KnowledgePoints = curriculum.CountKnowledgePoints(nodes, levelPath(path, sub.Levels))
		} else {
			skipped++
		}

		if q.SectionKey != "" && (t.SectionKey == nil || *t.SectionKey != q.SectionKey) {
			continue
		}
		tagged = append(tagged, t)
	}

	status := knowledge.AggregateStatus(attempts, sub.Levels)

	slog.Debug("progress built",
		"student_id", q.StudentID,
		"subject", sub.ID,
		"reports", len(reports),
		"unresolved_reports", skipped,
		"sections", len(status),
	)

	return Payload{
		Tree:          tree,
		SectionStatus: status,
		Reports:       tagged,
		Summary:       knowledge.Summarize(tree, status),
	}, nil
}

// RecordReport stores a new exam report for a student.
func (s *Service) RecordReport(ctx context.Context, studentID string, in NewReport) (report.ExamReport, error) {
	sub, ok := curriculum.LookupSubject(in.Subject)
	if !ok {
		return report.ExamReport{}, fmt.Errorf("%w: %q", curriculum.ErrUnknownSubject, in.Subject)
	}
	if in.Score == nil {
		return report.ExamReport{}, fmt.Errorf("%w: score is required", report.ErrInvalidReport)
	}

	created, err := s.store.CreateReport(ctx, report.ExamReport{
		StudentID:    studentID,
		Subject:      sub.Name,
		Score:        *in.Score,
		SelectedPath: report.EncodePath(in.SelectedPath),
	})
	if err != nil {
		return report.ExamReport{}, fmt.Errorf("record report: %w", err)
	}

	slog.Info("exam report recorded",
		"report_id", created.ID,
		"student_id", studentID,
		"subject", sub.ID,
		"score", created.Score,
	)
	return created, nil
}

// KnowledgePoints looks up the knowledge points listed for a path.
func (s *Service) KnowledgePoints(subject string, path map[string]string) KnowledgePoints {
	sub, ok := curriculum.LookupSubject(subject)
	if !ok {
		return KnowledgePoints{Points: []string{}}
	}
	points := curriculum.ListKnowledgePoints(s.catalog.Nodes(sub.ID), path)
	return KnowledgePoints{Count: len(points), Points: points}
}

func levelPath(path map[string]string, levels []string) map[string]string {
	out := make(map[string]string, len(levels))
	for _, level := range levels {
		if v, ok := path[level]; ok {
			out[level] = v
		}
	}
	return out
}
