// Package mcp provides an MCP (Model Context Protocol) server adapter for Jarvis.
// It lets AI assistants search, question and feed the local document index.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

// errIngestDisabled is returned by the ingest tool when no document service is wired.
var errIngestDisabled = errors.New("mcp: ingestion is not enabled on this server")
