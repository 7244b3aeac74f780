package domain

import (
	"path/filepath"
	"slices"
)

// FormatCategory groups upload formats for display.
type FormatCategory string

// Format categories.
const (
	FormatDocument     FormatCategory = "document"
	FormatSpreadsheet  FormatCategory = "spreadsheet"
	FormatPresentation FormatCategory = "presentation"
	FormatImage        FormatCategory = "image"
)

// supportedFormats is the upload allow-list by category.
var supportedFormats = map[FormatCategory][]string{
	FormatDocument:     {"pdf", "docx", "doc", "txt"},
	FormatSpreadsheet:  {"xlsx", "xls", "csv"},
	FormatPresentation: {"pptx", "ppt"},
	FormatImage:        {"png", "jpg", "jpeg", "bmp", "tiff"},
}

// SupportedFormats returns a copy of the allow-list grouped by category.
func SupportedFormats() map[FormatCategory][]string {
	out := make(map[FormatCategory][]string, len(supportedFormats))
	for k, v := range supportedFormats {
		out[k] = slices.Clone(v)
	}
	return out
}

// AllFormatCategories returns categories in display order.
func AllFormatCategories() []FormatCategory {
	return []FormatCategory{FormatDocument, FormatSpreadsheet, FormatPresentation, FormatImage}
}

// FileTypeOf returns the normalised extension of a filename.
func FileTypeOf(filename string) string {
	return NormaliseFileType(filepath.Ext(filename))
}

// IsSupportedFormat reports whether the filename's extension may be uploaded.
func IsSupportedFormat(filename string) bool {
	ext := FileTypeOf(filename)
	if ext == "" {
		return false
	}
	for _, exts := range supportedFormats {
		if slices.Contains(exts, ext) {
			return true
		}
	}
	return false
}

// IsImageType reports whether a file type holds image-derived text.
func IsImageType(fileType string) bool {
	return slices.Contains(supportedFormats[FormatImage], NormaliseFileType(fileType))
}
