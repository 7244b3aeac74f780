package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

const uriScheme = "jarvis://"

// Resource URIs.
const (
	formatsURI   = uriScheme + "formats"
	ingestLogURI = uriScheme + "ingest-log"
)

// ingestLogSize is the number of events served by the ingest-log resource.
const ingestLogSize = 50

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         formatsURI,
		Name:        "formats",
		Description: "File types accepted for ingestion, grouped by category",
		MIMEType:    "application/json",
	}, s.handleFormatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         ingestLogURI,
		Name:        "ingest-log",
		Description: "Most recent ingestion step events",
		MIMEType:    "application/json",
	}, s.handleIngestLogResource)
}

func (s *Server) handleFormatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	formats := make(map[string][]string)
	for category, exts := range domain.SupportedFormats() {
		formats[string(category)+"_formats"] = exts
	}
	return jsonResource(req.Params.URI, formats)
}

func (s *Server) handleIngestLogResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	events := []domain.IngestEvent{}
	if s.ports.Documents != nil {
		events = s.ports.Documents.RecentEvents(ingestLogSize)
	}
	return jsonResource(req.Params.URI, events)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
