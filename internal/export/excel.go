// Package export writes tracked jobs to a spreadsheet for manual review.
package export

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jobdigest/job-agent/internal/store"
)

const (
	jobsSheet    = "Jobs"
	summarySheet = "Summary"
	dateLayout   = "2006-01-02"
)

var jobHeaders = []string{
	"ID", "Date Found", "Score", "Match", "Title", "Company", "Location", "Platform",
	"Role Category", "Matching Skills", "Missing Skills", "Key Requirement", "Status", "Notes", "URL",
}

var jobColWidths = []float64{6, 12, 7, 9, 32, 24, 20, 12, 20, 40, 30, 45, 13, 40, 50}

// Workbook builds a workbook with a Jobs sheet in the given order and a Summary sheet.
// The caller closes the returned file.
func Workbook(jobs []store.Job) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", jobsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeJobs(f, jobs); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create jobs sheet: %w", err)
	}
	if err := writeSummary(f, jobs); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, jobs []store.Job) error {
	f, err := Workbook(jobs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook to path, adding the .xlsx extension when missing.
func SaveAs(path string, jobs []store.Job) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := Workbook(jobs)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func bordered(fill string) *excelize.Style {
	style := &excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	}
	if fill != "" {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1}
	}
	return style
}

func writeJobs(f *excelize.File, jobs []store.Job) error {
	for i, width := range jobColWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(jobsSheet, col, col, width); err != nil {
			return err
		}
	}

	header := bordered("4472C4")
	header.Font = &excelize.Font{Bold: true, Color: "FFFFFF"}
	header.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	headerStyle, err := f.NewStyle(header)
	if err != nil {
		return err
	}

	// Score bands follow the digest badges.
	excellentStyle, err := f.NewStyle(bordered("C6EFCE"))
	if err != nil {
		return err
	}
	strongStyle, err := f.NewStyle(bordered("DDEBF7"))
	if err != nil {
		return err
	}
	plainStyle, err := f.NewStyle(bordered(""))
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(jobsSheet, "A1", &jobHeaders); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(jobHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(jobsSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, job := range jobs {
		row := i + 2
		values := []any{
			job.ID,
			formatDate(job),
			job.FitScore,
			job.RoleMatch,
			job.Title,
			job.Company,
			job.Location,
			job.Platform,
			job.RoleCategory,
			strings.Join(job.MatchingSkills, ", "),
			strings.Join(job.MissingSkills, ", "),
			job.KeyRequirement,
			string(job.Status),
			job.Notes,
			job.URL,
		}

		start, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(jobsSheet, start, &values); err != nil {
			return err
		}

		style := plainStyle
		switch {
		case job.FitScore >= 9:
			style = excellentStyle
		case job.FitScore >= 7:
			style = strongStyle
		}
		end, err := excelize.CoordinatesToCellName(len(jobHeaders), row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(jobsSheet, start, end, style); err != nil {
			return err
		}

		if job.URL != "" {
			cell, err := excelize.CoordinatesToCellName(len(jobHeaders), row)
			if err != nil {
				return err
			}
			if err := f.SetCellHyperLink(jobsSheet, cell, job.URL, "External"); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(jobsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func formatDate(job store.Job) string {
	if job.DateFound.IsZero() {
		return ""
	}
	return job.DateFound.Format(dateLayout)
}

func writeSummary(f *excelize.File, jobs []store.Job) error {
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetCellValue(summarySheet, "A1", "Tracked jobs"); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", titleStyle); err != nil {
		return err
	}

	rows := [][]any{
		{"Total", len(jobs)},
		{"Average score", averageScore(jobs)},
	}
	rows = append(rows, []any{""})
	rows = append(rows, []any{"By platform"})
	rows = append(rows, countRows(jobs, func(j store.Job) string { return j.Platform })...)
	rows = append(rows, []any{""})
	rows = append(rows, []any{"By status"})
	rows = append(rows, countRows(jobs, func(j store.Job) string { return string(j.Status) })...)

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, cell, cell, labelStyle); err != nil {
			return err
		}
	}
	return nil
}

func averageScore(jobs []store.Job) float64 {
	var sum, n int
	for _, job := range jobs {
		if job.FitScore > 0 {
			sum += job.FitScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

// countRows groups jobs by key and returns label/count rows sorted by label.
func countRows(jobs []store.Job, key func(store.Job) string) [][]any {
	counts := map[string]int{}
	for _, job := range jobs {
		label := key(job)
		if label == "" {
			label = "(none)"
		}
		counts[label]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([][]any, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []any{label, counts[label]})
	}
	return rows
}
