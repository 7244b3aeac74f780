package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of candidates to consider (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Matches []MatchOutput `json:"matches"`
	Count   int           `json:"count"`
}

// MatchOutput is one retrieved chunk.
type MatchOutput struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
	DocID    string  `json:"doc_id"`
	ChunkIdx int     `json:"chunk_id"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation id; reuse it to keep history"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Status  string   `json:"status"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of a local file to index"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Chunks   int    `json:"chunks"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find document passages relevant to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents, with sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Extract, chunk and index a local file",
	}, s.handleIngest)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}

	result := s.ports.Search.Search(ctx, input.Query, input.TopK)
	if result.Err != nil {
		return nil, SearchOutput{}, result.Err
	}

	output := SearchOutput{
		Matches: make([]MatchOutput, len(result.Matches)),
		Count:   len(result.Matches),
	}
	for i, m := range result.Matches {
		output.Matches[i] = MatchOutput{
			ID:       m.ID,
			Source:   m.Source(),
			Score:    m.Score,
			Text:     m.Metadata.Text,
			DocID:    m.Metadata.DocID,
			ChunkIdx: m.Metadata.ChunkID,
		}
	}

	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	resp, err := s.ports.Chat.Ask(ctx, domain.ChatRequest{
		Message:   input.Question,
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  resp.Response,
		Sources: resp.Sources,
		Status:  string(resp.Status),
	}, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Documents == nil {
		return nil, IngestOutput{}, errIngestDisabled
	}
	if !filepath.IsAbs(input.Path) {
		return nil, IngestOutput{}, errors.New("path must be absolute")
	}
	if _, err := os.Stat(input.Path); err != nil {
		return nil, IngestOutput{}, err
	}

	report, err := s.ports.Documents.IngestFile(ctx, input.Path, filepath.Base(input.Path))
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocID:    report.DocID,
		Filename: report.Filename,
		FileType: report.FileType,
		Chunks:   report.Chunks,
	}, nil
}
