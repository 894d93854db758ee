package curriculum_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
)

func TestLoader_LoadCatalogs(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	nodes := loader.Nodes(curriculum.Math)
	if len(nodes) != 2 {
		t.Fatalf("Nodes(math) = %d nodes, want 2", len(nodes))
	}
	if nodes[0].Values["节"] != "数列极限" {
		t.Errorf("first node 节 = %q, want 数列极限 (file order)", nodes[0].Values["节"])
	}
	if len(loader.Issues()) != 0 {
		t.Errorf("Issues() = %v, want none", loader.Issues())
	}
}

func TestLoader_NodesByDisplayName(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.Nodes("高等数学")); got != 2 {
		t.Errorf("Nodes(高等数学) = %d nodes, want 2", got)
	}
	if got := loader.Nodes("history"); got != nil {
		t.Errorf("Nodes(history) = %v, want nil", got)
	}
}

func TestLoader_YAMLCatalog(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "english.yaml"), []byte(`
- 板块: 阅读理解
  题型: 选择题
  章: 议论文
  节: 主旨大意
  知识点: [主题句, 段落结构]
`), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	nodes := loader.Nodes(curriculum.English)
	if len(nodes) != 1 {
		t.Fatalf("Nodes(english) = %d nodes, want 1", len(nodes))
	}
	if !nodes[0].Complete(curriculum.Levels(curriculum.English)) {
		t.Errorf("node should have every english level, got %v", nodes[0].Values)
	}
	if !slices.Equal(nodes[0].KnowledgePoints, []string{"主题句", "段落结构"}) {
		t.Errorf("KnowledgePoints = %v", nodes[0].KnowledgePoints)
	}
}

func TestLoader_XLSXCatalog(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	rows := [][]any{
		{"章", "节", "知识点"},
		{"操作系统", "进程与线程", "进程状态、线程概念"},
		{},
		{"数据库", "关系数据库", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, "computer.xlsx")); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	nodes := loader.Nodes(curriculum.Computer)
	if len(nodes) != 2 {
		t.Fatalf("Nodes(computer) = %d nodes, want 2 (blank row skipped)", len(nodes))
	}
	if !slices.Equal(nodes[0].KnowledgePoints, []string{"进程状态", "线程概念"}) {
		t.Errorf("KnowledgePoints = %v, want [进程状态 线程概念]", nodes[0].KnowledgePoints)
	}
	if !nodes[1].HasPoints || len(nodes[1].KnowledgePoints) != 0 {
		t.Errorf("empty knowledge-point cell should load as an empty list, got %+v", nodes[1])
	}
}

func TestLoader_SkipsNonCatalogFiles(t *testing.T) {
	dir := setupTestCatalog(t)

	os.WriteFile(filepath.Join(dir, "README.md"), []byte("# catalogs"), 0o644)
	os.WriteFile(filepath.Join(dir, "history.json"), []byte(`[{"章":"x","节":"y","知识点":[]}]`), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.Nodes(curriculum.Math)); got != 2 {
		t.Errorf("Nodes(math) = %d, want 2", got)
	}
}

func TestLoader_InvalidJSONIsReported(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "math.json"), []byte(`{not json`), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.Nodes(curriculum.Math)); got != 0 {
		t.Errorf("Nodes(math) = %d, want 0", got)
	}
	if len(loader.Issues()) == 0 {
		t.Error("Issues() should report the unreadable catalog")
	}
}

func TestLoader_MalformedRowsReported(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "math.json"), []byte(`[
		{"章": "极限", "节": "数列极限", "知识点": ["定义"]},
		{"章": "极限", "节": "函数极限", "知识点": "左右极限"},
		{"章": "极限", "知识点": []}
	]`), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	kinds := map[curriculum.IssueKind]int{}
	for _, issue := range loader.Issues() {
		kinds[issue.Kind]++
	}
	if kinds[curriculum.IssueSchema] == 0 {
		t.Error("expected schema issues for malformed rows")
	}
	if kinds[curriculum.IssueKnowledgePoints] != 1 {
		t.Errorf("knowledge_points issues = %d, want 1", kinds[curriculum.IssueKnowledgePoints])
	}
	if kinds[curriculum.IssueMissingLevel] != 1 {
		t.Errorf("missing_level issues = %d, want 1", kinds[curriculum.IssueMissingLevel])
	}
}

func TestLoader_StrictRejectsIssues(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "math.json"), []byte(`[
		{"章": "极限", "节": "数列极限", "知识点": ["定义"]},
		{"章": "极限", "节": "数列极限", "知识点": ["性质"]}
	]`), 0o644)

	_, err := curriculum.NewLoader(dir, curriculum.WithStrict(true))
	if !errors.Is(err, curriculum.ErrInvalidCatalog) {
		t.Fatalf("NewLoader(strict) error = %v, want ErrInvalidCatalog", err)
	}

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if got := len(loader.Nodes(curriculum.Math)); got != 2 {
		t.Errorf("non-strict loader kept %d nodes, want 2", got)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	loader, err := curriculum.NewLoaderFS(os.DirFS(dir))
	if err != nil {
		t.Fatalf("NewLoaderFS() error = %v", err)
	}

	for _, s := range curriculum.Subjects() {
		if got := len(loader.Nodes(s.ID)); got != 0 {
			t.Errorf("Nodes(%s) = %d, want 0 for empty dir", s.ID, got)
		}
	}
}

func TestLoader_EmbeddedCatalogs(t *testing.T) {
	loader, err := curriculum.NewLoader("", curriculum.WithStrict(true))
	if err != nil {
		t.Fatalf("NewLoader(embedded, strict) error = %v", err)
	}

	for _, s := range curriculum.Subjects() {
		if len(loader.Nodes(s.ID)) == 0 {
			t.Errorf("embedded catalog for %s is empty", s.ID)
		}
	}
	if got := loader.CountKnowledgePoints("高等数学", map[string]string{"章": "极限", "节": "数列极限"}); got != 2 {
		t.Errorf("CountKnowledgePoints(高等数学) = %d, want 2", got)
	}
}

func setupTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "math.json"), []byte(`[
		{"章": "极限", "节": "数列极限", "知识点": ["定义", "性质"]},
		{"章": "极限", "节": "函数极限", "知识点": ["左右极限"]}
	]`), 0o644)

	return dir
}

func TestLoader_MissingDir(t *testing.T) {
	_, err := curriculum.NewLoader(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("NewLoader() should fail for a missing directory")
	}
}
