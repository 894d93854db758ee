package curriculum

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema returns the JSON schema a subject catalog document should satisfy.
func catalogSchema(subject Subject) map[string]any {
	properties := map[string]any{
		KnowledgePointField: map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	}
	required := make([]any, 0, len(subject.Levels)+1)
	for _, level := range subject.Levels {
		properties[level] = map[string]any{"type": "string", "minLength": 1}
		required = append(required, level)
	}
	required = append(required, KnowledgePointField)

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// ValidateDocument checks a decoded catalog document against the subject's
// schema. Schema violations are returned as issues; the error is reserved for
// failures to run the validation at all.
func ValidateDocument(subject Subject, doc any) ([]Issue, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(catalogSchema(subject)))
	if err != nil {
		return nil, fmt.Errorf("compiling %s catalog schema: %w", subject.ID, err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating %s catalog: %w", subject.ID, err)
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, Issue{
			Subject: subject.ID,
			Kind:    IssueSchema,
			Row:     -1,
			Detail:  fmt.Sprintf("%s: %s", e.Field(), e.Description()),
		})
	}
	return issues, nil
}
