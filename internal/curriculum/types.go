package curriculum

import "maps"

// KnowledgePointField is the catalog field holding a node's knowledge points.
const KnowledgePointField = "知识点"

// Node is one row of a subject catalog: a value per hierarchy level plus
// the knowledge points taught under that path.
type Node struct {
	Values          map[string]string
	KnowledgePoints []string
	// HasPoints is false when the knowledge-point field was missing or not an array.
	HasPoints bool
}

// NodeFromRecord converts a loosely typed catalog record into a Node.
// Non-string level values are dropped; a knowledge-point field that is not
// an array leaves HasPoints false.
func NodeFromRecord(rec map[string]any) Node {
	n := Node{Values: make(map[string]string, len(rec))}
	for k, v := range rec {
		if k == KnowledgePointField {
			n.KnowledgePoints, n.HasPoints = pointList(v)
			continue
		}
		if s, ok := v.(string); ok {
			n.Values[k] = s
		}
	}
	return n
}

func pointList(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return append([]string{}, items...), true
	case []any:
		points := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				points = append(points, s)
			}
		}
		return points, true
	default:
		return nil, false
	}
}

// Complete reports whether the node has a non-empty value for every level.
func (n Node) Complete(levels []string) bool {
	for _, level := range levels {
		if n.Values[level] == "" {
			return false
		}
	}
	return true
}

// Path returns the node's values restricted to the given levels.
func (n Node) Path(levels []string) map[string]string {
	path := make(map[string]string, len(levels))
	for _, level := range levels {
		if v, ok := n.Values[level]; ok {
			path[level] = v
		}
	}
	return path
}

// Matches reports whether the node agrees with every constraint in path.
// Fields of the node that path does not mention are ignored.
func (n Node) Matches(path map[string]string) bool {
	for k, want := range path {
		got, ok := n.Values[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := Node{
		Values:    maps.Clone(n.Values),
		HasPoints: n.HasPoints,
	}
	if n.KnowledgePoints != nil {
		c.KnowledgePoints = append([]string{}, n.KnowledgePoints...)
	}
	return c
}
