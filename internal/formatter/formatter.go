// package formatter renders connectors, playbooks, and history entries as text, CSV, or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/tqlx/internal/models"
)

// Format names an output format for connector listings.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, csv, markdown (or md), ignoring case. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, csv, or markdown)", s)
	}
}

const timeLayout = "2006-01-02 15:04"

var connectorHeaders = []string{"ID", "Name", "Type", "Status", "Created", "Updated"}

func connectorRow(c models.Connector) []string {
	return []string{
		strconv.Itoa(c.ID),
		c.Name,
		c.Type,
		c.Status,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

// ExportConnectors renders connectors in the given format.
func ExportConnectors(connectors []models.Connector, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ConnectorsToCSV(connectors)
	case FormatMarkdown:
		return ConnectorsToMarkdown(connectors), nil
	default:
		return ConnectorsToText(connectors), nil
	}
}

// ConnectorsToCSV converts connectors to CSV with columns: ID, Name, Type, Status, Created, Updated
func ConnectorsToCSV(connectors []models.Connector) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(connectorHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range connectors {
		if err := writer.Write(connectorRow(c)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ConnectorsToMarkdown converts connectors to a Markdown table
func ConnectorsToMarkdown(connectors []models.Connector) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Connectors\n\n")
	if len(connectors) == 0 {
		buf.WriteString("_No connectors._\n")
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(connectorHeaders, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(connectorHeaders)) + "\n")
	for _, c := range connectors {
		row := connectorRow(c)
		for i := range row {
			row[i] = strings.ReplaceAll(row[i], "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	return buf.Bytes()
}

// ConnectorsToText converts connectors to an aligned plain-text table
func ConnectorsToText(connectors []models.Connector) []byte {
	var buf bytes.Buffer
	if len(connectors) == 0 {
		buf.WriteString("No connectors found.\n")
		return buf.Bytes()
	}

	rows := make([][]string, 0, len(connectors))
	for _, c := range connectors {
		rows = append(rows, connectorRow(c))
	}
	writeTable(&buf, connectorHeaders, rows)
	return buf.Bytes()
}

func writeTable(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// PlaybookToText renders a configured playbook, including the next scheduled run after now.
func PlaybookToText(p *models.Playbook, now time.Time) []byte {
	var buf bytes.Buffer

	name := p.Name
	if name == "" {
		name = p.PlaybookID
	}
	buf.WriteString(fmt.Sprintf("Playbook: %s\n", name))
	buf.WriteString(fmt.Sprintf("Playbook ID: %s\n", p.PlaybookID))
	if p.ID != "" {
		buf.WriteString(fmt.Sprintf("Server ID: %s\n", p.ID))
	}
	buf.WriteString(fmt.Sprintf("Status: %s\n", p.Status))
	buf.WriteString(fmt.Sprintf("Connector: %d\n", p.ParadigmOptions.ConnectorID))
	buf.WriteString(fmt.Sprintf("Schedule: %s\n", DescribeSchedule(p.CronString, now)))

	if len(p.EmailAddresses) > 0 {
		buf.WriteString(fmt.Sprintf("Emails: %s\n", strings.Join(p.EmailAddresses, ", ")))
	} else {
		buf.WriteString("Emails: (none)\n")
	}

	if p.Prompt != "" {
		buf.WriteString("\n" + p.Prompt + "\n")
	}

	return buf.Bytes()
}

// HistoryToText renders history entries as an aligned table, newest first as given.
func HistoryToText(entries []*models.HistoryEntry) []byte {
	var buf bytes.Buffer
	if len(entries) == 0 {
		buf.WriteString("No history recorded.\n")
		return buf.Bytes()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := "ok"
		if !e.Success() {
			result = "failed"
			if e.Message() != "" {
				result += ": " + e.Message()
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Sequence()),
			e.CreatedAt().Local().Format(timeLayout),
			string(e.Operation()),
			e.PlaybookID(),
			result,
		})
	}

	writeTable(&buf, []string{"#", "When", "Operation", "Playbook", "Result"}, rows)
	return buf.Bytes()
}

// WriteExport writes data to path, or to w when path is empty or "-".
func WriteExport(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
