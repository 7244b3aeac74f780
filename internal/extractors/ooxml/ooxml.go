// Package ooxml reads text out of Office Open XML packages (docx, xlsx,
// pptx), which are zip archives of XML parts.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// maxPartSize bounds a single decompressed XML part.
const maxPartSize = 64 << 20

// ErrPartNotFound means the archive lacks a required part.
var ErrPartNotFound = errors.New("part not found")

// Package is an opened OOXML archive.
type Package struct {
	zr    *zip.ReadCloser
	parts map[string]*zip.File
}

// Open opens the archive at path.
func Open(path string) (*Package, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: not an office document: %w", domain.ErrInvalidInput, err)
	}
	p := &Package{zr: zr, parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.parts[f.Name] = f
	}
	return p, nil
}

// Close closes the archive.
func (p *Package) Close() error {
	return p.zr.Close()
}

// Has reports whether the named part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Read returns the decompressed content of a part.
func (p *Package) Read(name string) ([]byte, error) {
	f, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("%w: part %s is too large", domain.ErrInvalidInput, name)
	}
	return data, nil
}

// Numbered returns the parts matching prefix + N + suffix ordered by N,
// e.g. ppt/slides/slide1.xml, slide2.xml, ..., slide10.xml.
func (p *Package) Numbered(prefix, suffix string) []string {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)` + regexp.QuoteMeta(suffix) + "$")
	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for name := range p.parts {
		if m := re.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1]) //nolint:errcheck // digits only
			found = append(found, numbered{name, n})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}

// Paragraphs collects the character data of every text element, joining
// runs within a paragraph and returning one string per non-empty paragraph.
// Elements are matched by local name, so "t" and "p" cover both w: and a:
// namespaces. Tabs and breaks inside a paragraph become spaces.
func Paragraphs(data []byte, text, paragraph string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	var (
		out    []string
		cur    strings.Builder
		inText bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed xml: %w", domain.ErrInvalidInput, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case text:
				inText = true
			case "tab", "br":
				cur.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case text:
				inText = false
			case paragraph:
				flush()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	flush()
	return out, nil
}
