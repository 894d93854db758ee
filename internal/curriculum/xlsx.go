package curriculum

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// decodeWorkbook reads the first sheet of a catalog workbook into the same
// document shape a JSON or YAML catalog decodes to. The header row names the
// levels and the knowledge-point column; knowledge points share one cell.
func decodeWorkbook(r io.Reader) (any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []any{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []any{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.TrimSpace(col)
	}

	doc := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := make(map[string]any, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if col == KnowledgePointField {
				rec[col] = splitPoints(cell)
				continue
			}
			if cell != "" {
				rec[col] = cell
			}
		}
		doc = append(doc, rec)
	}
	return doc, nil
}

func splitPoints(cell string) []any {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		switch r {
		case '、', ',', '，', ';', '；', '\n':
			return true
		}
		return false
	})
	points := make([]any, 0, len(fields))
	for _, f := range fields {
		if p := strings.TrimSpace(f); p != "" {
			points = append(points, p)
		}
	}
	return points
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
