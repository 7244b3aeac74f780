package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleFormatsResource(t *testing.T) {
	server := newTestServer(t, &Ports{Search: &mockSearchService{}, Chat: &mockChatService{}})

	result, err := server.handleFormatsResource(context.Background(), makeReadResourceRequest(formatsURI))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	text := result.Contents[0].Text
	assert.Contains(t, text, "document_formats")
	assert.Contains(t, text, "docx")
	assert.Contains(t, text, "image_formats")
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
}

func TestServer_handleIngestLogResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty without document service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Chat: &mockChatService{}})

		result, err := server.handleIngestLogResource(ctx, makeReadResourceRequest(ingestLogURI))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns recent events", func(t *testing.T) {
		docs := &mockDocumentService{events: []domain.IngestEvent{
			{Filename: "a.csv", Step: domain.StepChunking, Status: domain.StatusSuccess},
		}}
		server := newTestServer(t, &Ports{Search: &mockSearchService{}, Chat: &mockChatService{}, Documents: docs})

		result, err := server.handleIngestLogResource(ctx, makeReadResourceRequest(ingestLogURI))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "a.csv")
		assert.Contains(t, result.Contents[0].Text, "CHUNKING")
	})
}
