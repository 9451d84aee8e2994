package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lrcx/internal/models"
	"github.com/desertthunder/lrcx/internal/shared"
)

// utf8BOM lets spreadsheet applications detect UTF-8 in the CSV reports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trackFields(o models.Outcome) (id, title, artist, score string) {
	if o.Track == nil {
		return "", "", "", ""
	}
	id = strconv.FormatInt(o.Track.ID, 10)
	if o.Track.Source == models.SourceSearch {
		score = strconv.FormatFloat(o.Track.Score, 'f', 1, 64)
	}
	return id, o.Track.Title, o.Track.Artist, score
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	writer := csv.NewWriter(&buf)

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportToCSV converts a Report to the summary CSV with one row per processed entry.
//
// Columns: position, entry, status, song_id, name, artists, score, attempts, path, reason
func ReportToCSV(report *models.Report) ([]byte, error) {
	records := [][]string{{"position", "entry", "status", "song_id", "name", "artists", "score", "attempts", "path", "reason"}}
	for _, o := range report.Outcomes {
		id, title, artist, score := trackFields(o)
		records = append(records, []string{
			strconv.Itoa(o.Position),
			o.Entry,
			string(o.Status),
			id,
			title,
			artist,
			score,
			strconv.Itoa(o.Attempts),
			o.Path,
			o.Reason,
		})
	}
	return writeCSV(records)
}

// ResolvedToCSV converts a Report to the query-to-song mapping CSV.
//
// Columns: original_query, resolved_song_id, resolved_name, resolved_artists, match_note_or_score
func ResolvedToCSV(report *models.Report) ([]byte, error) {
	records := [][]string{{"original_query", "resolved_song_id", "resolved_name", "resolved_artists", "match_note_or_score"}}
	for _, o := range report.Outcomes {
		id, title, artist, score := trackFields(o)
		note := score
		switch {
		case o.Track == nil:
			note = "unresolved"
		case o.Track.Source == models.SourceID:
			note = "id_or_url"
		}
		records = append(records, []string{o.Entry, id, title, artist, note})
	}
	return writeCSV(records)
}

// ReportToJSON encodes the full report.
func ReportToJSON(report *models.Report) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// ReportToText renders a plain text summary followed by one line per entry.
func ReportToText(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(SummaryLine(report) + "\n\n")
	for _, o := range report.Outcomes {
		buf.WriteString(OutcomeLine(o, len(report.Outcomes)) + "\n")
	}
	if pending := report.Pending(); pending > 0 {
		buf.WriteString(fmt.Sprintf("\n%d entries not processed (cancelled)\n", pending))
	}
	return buf.Bytes(), nil
}

// ReportToMarkdown renders the report as a Markdown table.
func ReportToMarkdown(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Lyrics Run\n\n")
	if report.RunID != "" {
		buf.WriteString(fmt.Sprintf("**Run:** %s\n\n", report.RunID))
	}
	buf.WriteString(fmt.Sprintf("**Output:** %s\n\n", report.OutDir))
	buf.WriteString(SummaryLine(report) + "\n\n")
	buf.WriteString("| # | Entry | Status | Song | Artist | File |\n")
	buf.WriteString("|---|-------|--------|------|--------|------|\n")

	for _, o := range report.Outcomes {
		_, title, artist, _ := trackFields(o)
		file := filepath.Base(o.Path)
		if o.Path == "" {
			file = o.Reason
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			o.Position, escapeCell(o.Entry), o.Status, escapeCell(title), escapeCell(artist), escapeCell(file)))
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// SummaryLine returns the one-line tally of a report.
func SummaryLine(report *models.Report) string {
	return fmt.Sprintf("%d entries: %d written, %d skipped, %d unresolved, %d failed in %s",
		report.Total,
		report.Count(models.StatusWritten),
		report.Count(models.StatusSkipped),
		report.Count(models.StatusUnresolved),
		report.Failed(),
		report.Duration().Round(time.Millisecond),
	)
}

// OutcomeLine renders a single outcome as "[i/n] entry -> status detail".
func OutcomeLine(o models.Outcome, total int) string {
	detail := o.Reason
	switch o.Status {
	case models.StatusWritten, models.StatusSkipped:
		detail = o.Path
	}
	if detail == "" {
		return fmt.Sprintf("[%d/%d] %s -> %s", o.Position, total, o.Entry, o.Status)
	}
	return fmt.Sprintf("[%d/%d] %s -> %s (%s)", o.Position, total, o.Entry, o.Status, detail)
}

// WriteReport writes report to path in the format implied by its extension and returns the files created.
//
// .csv writes the summary at path and the resolution mapping next to it as {base}_resolved.csv;
// .json, .md and .txt write a single file. Any other extension is rejected.
func WriteReport(report *models.Report, path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	switch ext {
	case ".csv":
		summary, err := ReportToCSV(report)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV: %w", err)
		}
		resolved, err := ResolvedToCSV(report)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV: %w", err)
		}

		resolvedPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_resolved.csv"
		if err := os.WriteFile(path, summary, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}
		if err := os.WriteFile(resolvedPath, resolved, 0644); err != nil {
			return nil, fmt.Errorf("failed to write CSV file: %w", err)
		}
		return []string{path, resolvedPath}, nil
	case ".json", ".md", ".markdown", ".txt":
		var data []byte
		var err error
		switch ext {
		case ".json":
			data, err = ReportToJSON(report)
		case ".txt":
			data, err = ReportToText(report)
		default:
			data, err = ReportToMarkdown(report)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to generate report: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write report file: %w", err)
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported report format %q (use .csv, .json, .md or .txt)", shared.ErrInvalidArgument, ext)
	}
}
