// Package file provides file-backed adapters for configuration and prompt
// templates, both kept under ~/.jarvis.
package file
