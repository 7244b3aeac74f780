// Package tabular renders a table of rows as text: a dataset overview
// for retrieval, followed by the rows themselves.
package tabular

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	sampleRows      = 3
	sampleColumns   = 4
	maxCategories   = 20
	topCategories   = 3
	maxRenderedRows = 1000
)

// Table is a header row and the data rows below it. Rows may be ragged.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// FromRecords treats the first record as the header. Blank rows are dropped.
func FromRecords(name string, records [][]string) Table {
	t := Table{Name: name}
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if t.Header == nil {
			t.Header = trimAll(rec)
			continue
		}
		t.Rows = append(t.Rows, trimAll(rec))
	}
	return t
}

// Render writes the overview, numeric and categorical analysis, a sample
// and up to 1000 rows as "column: value" lines.
func (t Table) Render() string {
	var b strings.Builder
	if t.Name != "" {
		fmt.Fprintf(&b, "Sheet: %s\n", t.Name)
	}
	b.WriteString("Dataset Overview:\n")
	fmt.Fprintf(&b, "- Total records: %d\n", len(t.Rows))
	fmt.Fprintf(&b, "- Columns: %s\n", strings.Join(t.Header, ", "))

	var numeric, categorical []string
	for col, name := range t.Header {
		values := t.column(col)
		if nums, ok := parseNumbers(values); ok {
			numeric = append(numeric, fmt.Sprintf("- %s: Total=%s, Avg=%.2f, Min=%s, Max=%s",
				name, formatNumber(sum(nums)), sum(nums)/float64(len(nums)),
				formatNumber(slices.Min(nums)), formatNumber(slices.Max(nums))))
			continue
		}
		if line := categories(name, values); line != "" {
			categorical = append(categorical, line)
		}
	}
	if len(numeric) > 0 {
		b.WriteString("\nNumeric Analysis:\n")
		b.WriteString(strings.Join(numeric, "\n"))
		b.WriteString("\n")
	}
	if len(categorical) > 0 {
		b.WriteString("\nCategorical Analysis:\n")
		b.WriteString(strings.Join(categorical, "\n"))
		b.WriteString("\n")
	}

	if len(t.Rows) > 0 {
		fmt.Fprintf(&b, "\nSample Data (first %d rows):\n", min(sampleRows, len(t.Rows)))
		for i, row := range t.Rows[:min(sampleRows, len(t.Rows))] {
			fmt.Fprintf(&b, "%d. %s\n", i+1, t.describe(row, sampleColumns))
		}

		b.WriteString("\nRows:\n")
		for _, row := range t.Rows[:min(maxRenderedRows, len(t.Rows))] {
			b.WriteString(t.describe(row, len(t.Header)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (t Table) column(i int) []string {
	var out []string
	for _, row := range t.Rows {
		if i < len(row) && row[i] != "" {
			out = append(out, row[i])
		}
	}
	return out
}

func (t Table) describe(row []string, columns int) string {
	parts := make([]string, 0, columns)
	for i := 0; i < columns && i < len(t.Header); i++ {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		parts = append(parts, t.Header[i]+": "+val)
	}
	return strings.Join(parts, " | ")
}

// parseNumbers succeeds only if every non-empty value is numeric.
func parseNumbers(values []string) ([]float64, bool) {
	if len(values) == 0 {
		return nil, false
	}
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		nums = append(nums, f)
	}
	return nums, true
}

func categories(name string, values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	if len(counts) == 0 || len(counts) >= maxCategories {
		return ""
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	top := make([]string, 0, topCategories)
	for _, k := range keys[:min(topCategories, len(keys))] {
		top = append(top, fmt.Sprintf("%s(%d)", k, counts[k]))
	}
	return fmt.Sprintf("- %s: %s", name, strings.Join(top, ", "))
}

func sum(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
