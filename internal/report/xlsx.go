// Package report renders batch verification results as spreadsheets.
package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/job-verifier/internal/types"
)

// Sheet names
const (
	SummarySheet = "Summary"
	ResultsSheet = "Results"
	FlagsSheet   = "Flags"
)

// verdictFill colors result rows by verdict.
var verdictFill = map[types.Verdict]string{
	types.VerdictLegit:          "C6EFCE",
	types.VerdictSuspicious:     "FFEB9C",
	types.VerdictFake:           "FFC7CE",
	types.VerdictIncompleteData: "DDEBF7",
	types.VerdictError:          "D9D9D9",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// SaveXLSX writes the report to path, adding the .xlsx extension when missing.
func SaveXLSX(path string, results []*types.Result, generatedAt time.Time) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return eris.Wrap(err, "report: create file")
	}
	if err := WriteXLSX(out, results, generatedAt); err != nil {
		_ = out.Close()
		return err
	}
	return eris.Wrap(out.Close(), "report: close file")
}

// WriteXLSX renders a workbook with a summary, one row per result, and one row per flag.
func WriteXLSX(w io.Writer, results []*types.Result, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return eris.Wrap(err, "report: rename sheet")
	}
	for _, name := range []string{ResultsSheet, FlagsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return eris.Wrapf(err, "report: create sheet %s", name)
		}
	}

	if err := writeSummary(f, results, generatedAt); err != nil {
		return eris.Wrap(err, "report: summary sheet")
	}
	if err := writeResults(f, results); err != nil {
		return eris.Wrap(err, "report: results sheet")
	}
	if err := writeFlags(f, results); err != nil {
		return eris.Wrap(err, "report: flags sheet")
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

func writeSummary(f *excelize.File, results []*types.Result, generatedAt time.Time) error {
	if err := f.SetColWidth(SummarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 30); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := make(map[types.Verdict]int)
	riskTotal, scored := 0, 0
	for _, r := range results {
		counts[r.Verdict]++
		if r.Verdict != types.VerdictError {
			riskTotal += r.RiskScore
			scored++
		}
	}

	rows := [][]any{
		{"Job Posting Verification Report"},
		nil,
		{"Generated:", generatedAt.Format("2006-01-02 15:04:05")},
		{"Postings verified:", len(results)},
		nil,
		{"Verdicts"},
		{"Legit:", counts[types.VerdictLegit]},
		{"Suspicious:", counts[types.VerdictSuspicious]},
		{"Fake:", counts[types.VerdictFake]},
		{"Incomplete data:", counts[types.VerdictIncompleteData]},
		{"Errors:", counts[types.VerdictError]},
		nil,
	}
	if scored > 0 {
		rows = append(rows, []any{"Average risk score:", float64(riskTotal) / float64(scored)})
	}

	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
		style := labelStyle
		if len(row) == 1 {
			style = headerStyle
			end, _ := excelize.CoordinatesToCellName(2, i+1)
			if err := f.MergeCell(SummarySheet, cell, end); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(SummarySheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeResults(f *excelize.File, results []*types.Result) error {
	headers := []any{"URL", "Title", "Company", "Verdict", "Risk", "Confidence", "Flags", "Recommendation", "Reason"}
	widths := []float64{50, 30, 22, 16, 8, 12, 8, 60, 40}
	if err := writeHeader(f, ResultsSheet, headers, widths); err != nil {
		return err
	}

	styles := make(map[types.Verdict]int, len(verdictFill))
	for v, color := range verdictFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		styles[v] = id
	}

	for i, r := range results {
		row := i + 2
		total := 0
		if r.Flags != nil {
			total = r.Flags.Total()
		}
		values := []any{
			r.Source.URL, r.Source.Title, r.Source.Company, string(r.Verdict),
			r.RiskScore, r.Confidence, total, r.Recommendation, r.Reason,
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetSheetRow(ResultsSheet, start, &values); err != nil {
			return err
		}
		if style, ok := styles[r.Verdict]; ok {
			if err := f.SetCellStyle(ResultsSheet, start, end, style); err != nil {
				return err
			}
		}
		if r.Source.URL != "" {
			if err := f.SetCellHyperLink(ResultsSheet, start, r.Source.URL, "External"); err != nil {
				return err
			}
		}
	}

	if len(results) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), len(results)+1)
		if err := f.AutoFilter(ResultsSheet, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return freezeHeader(f, ResultsSheet)
}

func writeFlags(f *excelize.File, results []*types.Result) error {
	headers := []any{"URL", "Category", "Flag"}
	if err := writeHeader(f, FlagsSheet, headers, []float64{50, 16, 80}); err != nil {
		return err
	}

	row := 2
	for _, r := range results {
		if r.Flags == nil {
			continue
		}
		for _, category := range r.Flags.Categories() {
			for _, msg := range r.Flags.Get(category) {
				values := []any{r.Source.URL, string(category), msg}
				cell, _ := excelize.CoordinatesToCellName(1, row)
				if err := f.SetSheetRow(FlagsSheet, cell, &values); err != nil {
					return err
				}
				row++
			}
		}
	}
	return freezeHeader(f, FlagsSheet)
}

func writeHeader(f *excelize.File, sheet string, headers []any, widths []float64) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", end, style)
}

func freezeHeader(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
