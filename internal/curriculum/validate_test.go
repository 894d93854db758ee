package curriculum_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
)

func TestValidate(t *testing.T) {
	subject, _ := curriculum.LookupSubject(curriculum.Math)
	nodes := []curriculum.Node{
		curriculum.NodeFromRecord(map[string]any{"章": "极限", "节": "数列极限", "知识点": []any{"定义"}}),
		curriculum.NodeFromRecord(map[string]any{"章": "极限", "节": "数列极限", "知识点": []any{"性质"}}),
		curriculum.NodeFromRecord(map[string]any{"章": "极限", "节": "函数极限", "知识点": []any{"左右极限"}}),
		curriculum.NodeFromRecord(map[string]any{"章": "极限", "节": "函数极限", "知识点": []any{"左右极限"}}),
		curriculum.NodeFromRecord(map[string]any{"章": "极限", "知识点": []any{}}),
	}

	issues := curriculum.Validate(subject, nodes)
	if len(issues) != 3 {
		t.Fatalf("Validate() = %d issues, want 3: %v", len(issues), issues)
	}

	if issues[0].Kind != curriculum.IssueDuplicatePath || issues[0].Row != 1 {
		t.Errorf("issues[0] = %+v, want duplicate_path at row 1", issues[0])
	}
	if !strings.Contains(issues[0].Detail, "different knowledge points") {
		t.Errorf("inconsistent duplicate should be flagged, got %q", issues[0].Detail)
	}
	if strings.Contains(issues[1].Detail, "different knowledge points") {
		t.Errorf("identical duplicate flagged as inconsistent: %q", issues[1].Detail)
	}
	if issues[2].Kind != curriculum.IssueMissingLevel || issues[2].Row != 4 {
		t.Errorf("issues[2] = %+v, want missing_level at row 4", issues[2])
	}
}

func TestValidateDocument(t *testing.T) {
	subject, _ := curriculum.LookupSubject(curriculum.Math)

	valid := []any{
		map[string]any{"章": "极限", "节": "数列极限", "知识点": []any{"定义"}},
	}
	issues, err := curriculum.ValidateDocument(subject, valid)
	if err != nil {
		t.Fatalf("ValidateDocument() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("ValidateDocument(valid) = %v, want none", issues)
	}

	invalid := []any{
		map[string]any{"章": "极限", "知识点": "定义"},
	}
	issues, err = curriculum.ValidateDocument(subject, invalid)
	if err != nil {
		t.Fatalf("ValidateDocument() error = %v", err)
	}
	if len(issues) < 2 {
		t.Errorf("ValidateDocument(invalid) = %v, want missing 节 and wrong 知识点 type", issues)
	}
	for _, issue := range issues {
		if issue.Kind != curriculum.IssueSchema || issue.Row != -1 {
			t.Errorf("issue = %+v, want schema kind with row -1", issue)
		}
	}

	issues, err = curriculum.ValidateDocument(subject, map[string]any{"章": "极限"})
	if err != nil {
		t.Fatalf("ValidateDocument() error = %v", err)
	}
	if len(issues) == 0 {
		t.Error("a non-array document should not validate")
	}
}
