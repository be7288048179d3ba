// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/ballotcheck/models"
)

// Sheet names
const (
	SummarySheet    = "Summary"
	ViolationsSheet = "Violations"
	WarningsSheet   = "Warnings"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	violationHeadings = []any{"Dataset", "Record", "Positions", "Rule", "Field", "Detail"}
	warningHeadings   = []any{"Dataset", "Record", "Position", "Kind", "Field", "Detail"}
)

// WriteXLSX writes a run as a workbook with Summary, Violations and
// Warnings sheets.
func WriteXLSX(w io.Writer, run models.ValidationRun) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	for _, name := range []string{ViolationsSheet, WarningsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeSummary(f, bold, run); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeViolations(f, bold, run.Report.Violations); err != nil {
		return fmt.Errorf("violations sheet: %w", err)
	}
	if err := writeWarnings(f, bold, run.Report.Warnings); err != nil {
		return fmt.Errorf("warnings sheet: %w", err)
	}

	return f.Write(w)
}

func writeSummary(f *excelize.File, bold int, run models.ValidationRun) error {
	report := run.Report
	rows := [][]any{
		{"Run ID", run.ID},
		{"Created", run.CreatedAt.UTC().Format(time.RFC3339)},
		{"Inputs hash", run.InputsHash},
		{"Valid", report.Valid},
		{"Constituency records", report.Summary.ConstituencyCount},
		{"Party-list records", report.Summary.PartyListCount},
		{"Violations", len(report.Violations)},
		{"Warnings", len(report.Warnings)},
		{},
		{"Rule", "Count"},
	}
	for _, k := range models.ViolationKinds {
		rows = append(rows, []any{string(k), report.Summary.ViolationsByRule[string(k)]})
	}
	rows = append(rows, []any{}, []any{"Warning", "Count"})
	for _, k := range models.WarningKinds {
		rows = append(rows, []any{string(k), report.Summary.WarningsByKind[string(k)]})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
		if row[0] == "Rule" || row[0] == "Warning" {
			if err := boldRow(f, SummarySheet, bold, i+1, len(row)); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 32)
}

func writeViolations(f *excelize.File, bold int, violations []models.Violation) error {
	if err := writeHeadings(f, ViolationsSheet, bold, violationHeadings); err != nil {
		return err
	}
	for i, v := range violations {
		row := []any{v.Dataset, v.RecordID, joinInts(v.Positions), string(v.Rule), v.Field, v.Detail}
		if err := setRow(f, ViolationsSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ViolationsSheet, "F", "F", 80)
}

func writeWarnings(f *excelize.File, bold int, warnings []models.Warning) error {
	if err := writeHeadings(f, WarningsSheet, bold, warningHeadings); err != nil {
		return err
	}
	for i, w := range warnings {
		pos := ""
		if w.Position != nil {
			pos = strconv.Itoa(*w.Position)
		}
		row := []any{w.Dataset, w.RecordID, pos, string(w.Kind), w.Field, w.Detail}
		if err := setRow(f, WarningsSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(WarningsSheet, "F", "F", 80)
}

func writeHeadings(f *excelize.File, sheet string, bold int, headings []any) error {
	if err := setRow(f, sheet, 1, headings); err != nil {
		return err
	}
	if err := boldRow(f, sheet, bold, 1, len(headings)); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func boldRow(f *excelize.File, sheet string, style, rowNo, cols int) error {
	first, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, rowNo)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
