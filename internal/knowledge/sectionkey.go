// Package knowledge builds the per-subject knowledge tree and overlays a
// student's exam history on its leaves.
package knowledge

import (
	"encoding/json"
	"strings"
)

const (
	pairSeparator  = ":"
	levelSeparator = "|"
)

// SectionKey derives the canonical identity of a path. Levels are visited in
// the subject's fixed order and each level present in path contributes
// "level:value"; absent levels are skipped. The key never depends on the
// iteration order of path.
//
// With no levels (an unrecognised subject) the path itself is serialised.
func SectionKey(path map[string]string, levels []string) string {
	if len(levels) == 0 {
		return rawKey(path)
	}

	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		v, ok := path[level]
		if !ok {
			continue
		}
		parts = append(parts, level+pairSeparator+v)
	}
	return strings.Join(parts, levelSeparator)
}

// rawKey serialises path as JSON; encoding/json writes map keys sorted.
func rawKey(path map[string]string) string {
	if path == nil {
		path = map[string]string{}
	}
	b, _ := json.Marshal(path)
	return string(b)
}
