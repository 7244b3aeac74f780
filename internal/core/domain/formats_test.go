package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"report.pdf", true},
		{"Budget.XLSX", true},
		{"slides.pptx", true},
		{"scan.tiff", true},
		{"notes.txt", true},
		{"archive.zip", false},
		{"README", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSupportedFormat(tt.filename))
		})
	}
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("png"))
	assert.True(t, IsImageType(".JPEG"))
	assert.False(t, IsImageType("pdf"))
	assert.False(t, IsImageType(""))
}

func TestSupportedFormats_ReturnsCopy(t *testing.T) {
	formats := SupportedFormats()
	formats[FormatImage][0] = "gif"

	assert.Equal(t, "png", SupportedFormats()[FormatImage][0])
	assert.Len(t, AllFormatCategories(), len(formats))
}
