// Package xlsx extracts Excel workbooks, summarising each sheet.
package xlsx

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/extractors/ooxml"
	"github.com/custodia-labs/jarvis/internal/extractors/tabular"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads .xlsx files.
type Extractor struct{}

// New creates an XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name identifies the extractor in logs.
func (e *Extractor) Name() string { return "xlsx" }

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string { return []string{"xlsx"} }

type workbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
	} `xml:"sheets>sheet"`
}

type sharedStrings struct {
	Items []richText `xml:"si"`
}

// richText is a shared or inline string: plain <t> or formatted <r><t> runs.
type richText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (r richText) String() string {
	if len(r.Runs) == 0 {
		return r.T
	}
	var b strings.Builder
	for _, run := range r.Runs {
		b.WriteString(run.T)
	}
	return b.String()
}

type worksheet struct {
	Rows []struct {
		Cells []cell `xml:"c"`
	} `xml:"sheetData>row"`
}

type cell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	Value  string   `xml:"v"`
	Inline richText `xml:"is"`
}

// Extract renders every sheet with its first row as the header.
func (e *Extractor) Extract(_ context.Context, path, _ string) (string, error) {
	pkg, err := ooxml.Open(path)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	var names []string
	if data, err := pkg.Read("xl/workbook.xml"); err == nil {
		var wb workbook
		if err := xml.Unmarshal(data, &wb); err != nil {
			return "", fmt.Errorf("%w: workbook: %w", domain.ErrInvalidInput, err)
		}
		for _, s := range wb.Sheets {
			names = append(names, s.Name)
		}
	}

	var shared []string
	if pkg.Has("xl/sharedStrings.xml") {
		data, err := pkg.Read("xl/sharedStrings.xml")
		if err != nil {
			return "", err
		}
		var ss sharedStrings
		if err := xml.Unmarshal(data, &ss); err != nil {
			return "", fmt.Errorf("%w: shared strings: %w", domain.ErrInvalidInput, err)
		}
		for _, item := range ss.Items {
			shared = append(shared, item.String())
		}
	}

	var parts []string
	for i, part := range pkg.Numbered("xl/worksheets/sheet", ".xml") {
		data, err := pkg.Read(part)
		if err != nil {
			return "", err
		}
		var ws worksheet
		if err := xml.Unmarshal(data, &ws); err != nil {
			return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, part, err)
		}

		name := fmt.Sprintf("Sheet%d", i+1)
		if i < len(names) {
			name = names[i]
		}
		table := tabular.FromRecords(name, records(ws, shared))
		if table.Header == nil {
			continue
		}
		parts = append(parts, table.Render())
	}
	return strings.Join(parts, "\n"), nil
}

// records lays cells out by their column reference, so skipped empty cells
// keep later values in the right column.
func records(ws worksheet, shared []string) [][]string {
	out := make([][]string, 0, len(ws.Rows))
	for _, row := range ws.Rows {
		var rec []string
		for i, c := range row.Cells {
			col := columnIndex(c.Ref)
			if col < 0 {
				col = i
			}
			for len(rec) <= col {
				rec = append(rec, "")
			}
			rec[col] = c.text(shared)
		}
		out = append(out, rec)
	}
	return out
}

func (c cell) text(shared []string) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return c.Inline.String()
	case "b":
		if c.Value == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return c.Value
	}
}

// columnIndex converts the letters of a reference like "AB12" to a
// zero-based column. It returns -1 when there are no letters.
func columnIndex(ref string) int {
	col := 0
	n := 0
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		col = col*26 + int(r-'A'+1)
		n++
	}
	if n == 0 || n > 3 {
		return -1
	}
	return col - 1
}
