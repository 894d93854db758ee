package curriculum

// FindNode returns the first node that agrees with every constraint in path.
func FindNode(nodes []Node, path map[string]string) (Node, bool) {
	for _, n := range nodes {
		if n.Matches(path) {
			return n, true
		}
	}
	return Node{}, false
}

// ListKnowledgePoints returns the knowledge points of the first node matching
// path. A missing node or a node without a knowledge-point array yields an
// empty list; report paths may refer to rows that have since been edited.
func ListKnowledgePoints(nodes []Node, path map[string]string) []string {
	n, ok := FindNode(nodes, path)
	if !ok || !n.HasPoints {
		return []string{}
	}
	return append([]string{}, n.KnowledgePoints...)
}

// CountKnowledgePoints is the length of ListKnowledgePoints.
func CountKnowledgePoints(nodes []Node, path map[string]string) int {
	n, ok := FindNode(nodes, path)
	if !ok || !n.HasPoints {
		return 0
	}
	return len(n.KnowledgePoints)
}
