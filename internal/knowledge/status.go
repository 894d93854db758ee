package knowledge

// PassScore is the score at or above which an exam report passes its section.
const PassScore = 80

// SectionStatus is the mastery of one section derived from exam reports.
type SectionStatus struct {
	ReportCount int  `json:"reportCount"`
	Passed      bool `json:"passed"`
}

// Attempt is the part of an exam report the aggregator reads. A nil Path
// means the report carried no usable selected path.
type Attempt struct {
	Path  map[string]string
	Score int
}

// ResolveKey returns the section key a selected path refers to. A path is
// only attributed to a section when it names a value for every level; for a
// subject without levels the raw serialisation is used.
func ResolveKey(path map[string]string, levels []string) (string, bool) {
	if path == nil {
		return "", false
	}
	for _, level := range levels {
		if path[level] == "" {
			return "", false
		}
	}
	return SectionKey(path, levels), true
}

// AggregateStatus folds attempts into a status per section key. Counts add up
// and Passed is the OR of score >= PassScore, so the result does not depend on
// the order of attempts. Attempts without a resolvable path are skipped.
func AggregateStatus(attempts []Attempt, levels []string) map[string]SectionStatus {
	status := make(map[string]SectionStatus)
	for _, a := range attempts {
		key, ok := ResolveKey(a.Path, levels)
		if !ok {
			continue
		}
		s := status[key]
		s.ReportCount++
		s.Passed = s.Passed || a.Score >= PassScore
		status[key] = s
	}
	return status
}

// Summary counts sections of a tree by status.
type Summary struct {
	Sections int `json:"sections"`
	Tested   int `json:"tested"`
	Passed   int `json:"passed"`
}

// Summarize counts the tree's sections that have reports and that are passed.
func Summarize(tree Tree, status map[string]SectionStatus) Summary {
	var sum Summary
	for _, leaf := range tree.Leaves() {
		sum.Sections++
		s, ok := status[leaf.SectionKey]
		if !ok || s.ReportCount == 0 {
			continue
		}
		sum.Tested++
		if s.Passed {
			sum.Passed++
		}
	}
	return sum
}
