package progress

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "进度"

	statusPassed   = "已通过"
	statusFailed   = "未通过"
	statusUntested = "未测试"
)

// WriteWorkbook writes the payload as an xlsx workbook with one row per section.
func WriteWorkbook(w io.Writer, p Payload) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, 0, len(p.Tree.Steps)+3)
	for _, step := range p.Tree.Steps {
		header = append(header, step)
	}
	header = append(header, "节点键", "报告数", "状态")
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, leaf := range p.Tree.Leaves() {
		st := p.SectionStatus[leaf.SectionKey]
		row := make([]any, 0, len(header))
		for _, label := range leaf.Labels {
			row = append(row, label)
		}
		row = append(row, leaf.SectionKey, st.ReportCount, statusText(st.ReportCount, st.Passed))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func statusText(reportCount int, passed bool) string {
	switch {
	case passed:
		return statusPassed
	case reportCount > 0:
		return statusFailed
	default:
		return statusUntested
	}
}
