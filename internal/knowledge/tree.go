package knowledge

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
)

// Tree is the knowledge tree of one subject.
type Tree struct {
	RootLabel string   `json:"rootLabel"`
	Steps     []string `json:"steps"`
	Nodes     []Node   `json:"nodes"`
}

// Node is one labelled grouping in the tree. Leaves carry a SectionKey and no
// children; inner nodes carry children and no key.
type Node struct {
	Label      string `json:"label"`
	SectionKey string `json:"sectionKey,omitempty"`
	Children   []Node `json:"children,omitempty"`
}

// IsLeaf reports whether the node is a section.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Leaf is a flattened section of the tree.
type Leaf struct {
	Labels     []string // one label per level, root first
	SectionKey string
}

// EmptyTree is returned for subjects the builder does not know.
func EmptyTree() Tree {
	return Tree{RootLabel: "", Steps: []string{}, Nodes: []Node{}}
}

// BuildTree groups a flat catalog level by level into a tree. Rows that lack
// a value for one of the subject's levels, or whose knowledge-point field is
// not an array, are left out. Siblings are ordered by Chinese collation.
func BuildTree(catalog []curriculum.Node, subject curriculum.Subject) Tree {
	if len(subject.Levels) == 0 {
		return EmptyTree()
	}

	eligible := make([]curriculum.Node, 0, len(catalog))
	for _, n := range catalog {
		if n.HasPoints && n.Complete(subject.Levels) {
			eligible = append(eligible, n)
		}
	}

	b := &builder{
		levels:   subject.Levels,
		collator: collate.New(language.SimplifiedChinese),
	}
	return Tree{
		RootLabel: subject.Name,
		Steps:     slices.Clone(subject.Levels),
		Nodes:     b.group(eligible, 0),
	}
}

// builder carries the per-build collator; collate.Collator is not safe for
// concurrent use, so each build gets its own.
type builder struct {
	levels   []string
	collator *collate.Collator
}

func (b *builder) group(nodes []curriculum.Node, depth int) []Node {
	level := b.levels[depth]

	var labels []string
	groups := make(map[string][]curriculum.Node)
	for _, n := range nodes {
		v := n.Values[level]
		if _, seen := groups[v]; !seen {
			labels = append(labels, v)
		}
		groups[v] = append(groups[v], n)
	}

	out := make([]Node, 0, len(labels))
	for _, label := range labels {
		members := groups[label]
		if depth == len(b.levels)-1 {
			// Every member shares all level values here, so the first one stands for the group.
			out = append(out, Node{
				Label:      label,
				SectionKey: SectionKey(members[0].Path(b.levels), b.levels),
			})
			continue
		}
		out = append(out, Node{
			Label:    label,
			Children: b.group(members, depth+1),
		})
	}

	slices.SortStableFunc(out, func(x, y Node) int {
		if c := b.collator.CompareString(x.Label, y.Label); c != 0 {
			return c
		}
		return strings.Compare(x.Label, y.Label)
	})
	return out
}

// Leaves returns the sections of the tree in display order.
func (t Tree) Leaves() []Leaf {
	var leaves []Leaf
	var walk func(nodes []Node, labels []string)
	walk = func(nodes []Node, labels []string) {
		for _, n := range nodes {
			path := append(slices.Clone(labels), n.Label)
			if n.IsLeaf() {
				leaves = append(leaves, Leaf{Labels: path, SectionKey: n.SectionKey})
				continue
			}
			walk(n.Children, path)
		}
	}
	walk(t.Nodes, nil)
	return leaves
}
