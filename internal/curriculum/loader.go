package curriculum

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog
var embeddedCatalogs embed.FS

// ErrInvalidCatalog is returned by strict loaders when the catalog has data-quality issues.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Loader loads and holds the per-subject curriculum catalogs.
type Loader struct {
	catalogs map[string][]Node
	issues   []Issue
	strict   bool
	mu       sync.RWMutex
}

// Option configures a Loader.
type Option func(*Loader)

// WithStrict makes catalog data-quality issues fatal at load time.
func WithStrict(strict bool) Option {
	return func(l *Loader) {
		l.strict = strict
	}
}

// NewLoader loads catalogs from rootDir, or the embedded defaults when rootDir is empty.
func NewLoader(rootDir string, opts ...Option) (*Loader, error) {
	if rootDir == "" {
		return NewEmbeddedLoader(opts...)
	}
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("opening curriculum path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("curriculum path %q is not a directory", rootDir)
	}
	return NewLoaderFS(os.DirFS(rootDir), opts...)
}

// NewEmbeddedLoader loads the catalogs compiled into the binary.
func NewEmbeddedLoader(opts ...Option) (*Loader, error) {
	sub, err := fs.Sub(embeddedCatalogs, "catalog")
	if err != nil {
		return nil, fmt.Errorf("opening embedded catalogs: %w", err)
	}
	return NewLoaderFS(sub, opts...)
}

// NewLoaderFS loads every catalog file in fsys. Files are named after the
// subject id they belong to: math.json, english.yaml, chinese.xlsx.
func NewLoaderFS(fsys fs.FS, opts ...Option) (*Loader, error) {
	l := &Loader{
		catalogs: make(map[string][]Node),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.loadAll(fsys); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	total := 0
	for _, s := range subjects {
		nodes := l.catalogs[s.ID]
		total += len(nodes)
		l.issues = append(l.issues, Validate(s, nodes)...)
	}
	for _, issue := range l.issues {
		slog.Warn("catalog issue",
			"subject", issue.Subject,
			"kind", issue.Kind,
			"row", issue.Row,
			"detail", issue.Detail,
		)
	}
	if l.strict && len(l.issues) > 0 {
		return nil, fmt.Errorf("%w: %d data-quality issues", ErrInvalidCatalog, len(l.issues))
	}

	slog.Info("curriculum loaded", "subjects", len(l.catalogs), "nodes", total, "issues", len(l.issues))
	return l, nil
}

// Nodes returns the catalog rows of a subject (id or display name) in file order.
// The returned nodes are shared and must not be modified.
func (l *Loader) Nodes(subject string) []Node {
	s, ok := LookupSubject(subject)
	if !ok {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.catalogs[s.ID])
}

// Issues returns the data-quality findings collected while loading.
func (l *Loader) Issues() []Issue {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.issues)
}

// CountKnowledgePoints returns how many knowledge points the first row
// matching path lists, or 0 when nothing usable matches.
func (l *Loader) CountKnowledgePoints(subject string, path map[string]string) int {
	return CountKnowledgePoints(l.Nodes(subject), path)
}

// ListKnowledgePoints returns the knowledge points of the first row matching path.
func (l *Loader) ListKnowledgePoints(subject string, path map[string]string) []string {
	return ListKnowledgePoints(l.Nodes(subject), path)
}

func (l *Loader) loadAll(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(p))
		subject, ok := subjectForFile(strings.TrimSuffix(path.Base(p), path.Ext(p)))
		if !ok {
			return nil // Not a catalog file
		}

		switch ext {
		case ".json", ".yaml", ".yml", ".xlsx":
			return l.loadCatalog(fsys, p, subject, ext)
		}
		return nil
	})
}

func (l *Loader) loadCatalog(fsys fs.FS, p string, subject Subject, ext string) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return err
	}

	doc, err := decodeCatalog(data, ext)
	if err != nil {
		slog.Warn("skipping unreadable catalog", "path", p, "error", err)
		l.addIssue(Issue{Subject: subject.ID, Kind: IssueSchema, Row: -1, Detail: fmt.Sprintf("%s: %v", p, err)})
		return nil
	}

	schemaIssues, err := ValidateDocument(subject, doc)
	if err != nil {
		return err
	}
	for _, issue := range schemaIssues {
		issue.Detail = p + ": " + issue.Detail
		l.addIssue(issue)
	}

	records, ok := doc.([]any)
	if !ok {
		slog.Warn("skipping catalog that is not a list", "path", p)
		return nil
	}

	nodes := make([]Node, 0, len(records))
	for _, item := range records {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		nodes = append(nodes, NodeFromRecord(rec))
	}

	l.mu.Lock()
	l.catalogs[subject.ID] = append(l.catalogs[subject.ID], nodes...)
	l.mu.Unlock()

	slog.Debug("catalog file loaded", "path", p, "subject", subject.ID, "nodes", len(nodes))
	return nil
}

func (l *Loader) addIssue(issue Issue) {
	l.mu.Lock()
	l.issues = append(l.issues, issue)
	l.mu.Unlock()
}

func decodeCatalog(data []byte, ext string) (any, error) {
	var doc any
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".xlsx":
		return decodeWorkbook(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	return doc, nil
}

func subjectForFile(name string) (Subject, bool) {
	for _, s := range subjects {
		if s.ID == name {
			return s.clone(), true
		}
	}
	return Subject{}, false
}
