//-------------------------------------------------------------------------
//
// pgEdge Sales Analytics
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package output renders query result tables as text, CSV, JSON or YAML.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/pgEdge/pgedge-sales/internal/sales"
)

// Supported formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the supported formats.
func Formats() []string {
	return []string{FormatTable, FormatCSV, FormatJSON, FormatYAML}
}

// ValidateFormat returns an error for an unsupported format.
func ValidateFormat(format string) error {
	for _, f := range Formats() {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown output format: %s (expected one of %s)",
		format, strings.Join(Formats(), ", "))
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// document is the JSON and YAML shape of a table.
type document struct {
	Name    string   `json:"name" yaml:"name"`
	Title   string   `json:"title" yaml:"title"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

func newDocument(t *sales.Table) document {
	rows := t.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return document{Name: t.Name, Title: t.Title, Columns: t.Columns, Rows: rows}
}

// Render writes the tables to w in the given format.
func Render(w io.Writer, format string, tables ...*sales.Table) error {
	switch format {
	case FormatTable:
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := renderTable(w, t); err != nil {
				return err
			}
		}
		return nil

	case FormatCSV:
		for i, t := range tables {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := renderCSV(w, t); err != nil {
				return err
			}
		}
		return nil

	case FormatJSON:
		docs := make([]document, len(tables))
		for i, t := range tables {
			docs[i] = newDocument(t)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(docs) == 1 {
			return enc.Encode(docs[0])
		}
		return enc.Encode(docs)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, t := range tables {
			if err := enc.Encode(newDocument(t)); err != nil {
				return err
			}
		}
		return enc.Close()

	default:
		return ValidateFormat(format)
	}
}

func renderTable(w io.Writer, t *sales.Table) error {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = formatCell(v, "NULL", 2)
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(w, "%s\n%s\n(%d %s)\n",
		titleStyle.Render(t.Title), tbl.String(), len(t.Rows), plural(len(t.Rows), "row"))
	return err
}

func renderCSV(w io.Writer, t *sales.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatCell(v, "", -1)
		}
		if err := cw.Write(record[:len(row)]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatCell formats a cell value; floats use prec decimals, or the
// shortest exact form when prec is negative.
func formatCell(v any, null string, prec int) string {
	switch v := v.(type) {
	case nil:
		return null
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', prec, 64)
	default:
		return fmt.Sprint(v)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
