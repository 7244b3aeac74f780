package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// defaultSessionID keys the history of clients that send no session.
const defaultSessionID = "default"

// recentUploadLogs is the number of events listed by /debug-upload-logs.
const recentUploadLogs = 10

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	TopK      int    `json:"top_k"`
}

type debugMatch struct {
	Filename   string  `json:"filename"`
	FileType   string  `json:"file_type"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	TextLength int     `json:"text_length"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Jarvis API is running",
		"status":  "healthy",
		"version": s.deps.Version,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	resp, err := s.deps.Chat.Ask(c.Request.Context(), domain.ChatRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		TopK:      req.TopK,
	})
	if err != nil {
		logger.Error("http: chat: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveAnswer(resp.Status)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing form file \"file\""})
		return
	}

	filename := filepath.Base(file.Filename)
	fileType := domain.FileTypeOf(filename)
	if !domain.IsSupportedFormat(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("File type %s not supported", fileType)})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "file too large"})
		return
	}

	dst := filepath.Join(s.deps.UploadDir, "jarvis_"+uuid.NewString()+"_"+filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		logger.Error("http: saving upload %s: %v", filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	s.ingestInBackground(context.WithoutCancel(c.Request.Context()), dst, filename)

	c.JSON(http.StatusOK, gin.H{
		"status":    "processing",
		"filename":  filename,
		"file_type": fileType,
		"message":   "File is being processed and analyzed",
	})
}

func (s *Server) ingestInBackground(ctx context.Context, path, filename string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		report, err := s.deps.Uploads.IngestFile(ctx, path, filename)
		if err != nil {
			logger.Warn("http: ingesting %s: %v", filename, err)
			return
		}
		logger.Info("http: ingested %s as %s (%d chunks)", filename, report.DocID, report.Chunks)
	}()
}

func (s *Server) supportedFormats(c *gin.Context) {
	out := gin.H{}
	for category, exts := range domain.SupportedFormats() {
		out[string(category)+"_formats"] = exts
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) debugSearch(c *gin.Context) {
	query := c.Param("query")
	topK := domain.DefaultTopK
	if raw := c.Query("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "top_k must be a positive integer"})
			return
		}
		topK = n
	}

	result := s.deps.Search.Search(c.Request.Context(), query, topK)
	if result.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": result.Err.Error()})
		return
	}

	matches := make([]debugMatch, len(result.Matches))
	for i, m := range result.Matches {
		fileType := m.Metadata.FileType
		if fileType == "" {
			fileType = "unknown"
		}
		matches[i] = debugMatch{
			Filename:   m.Metadata.Filename,
			FileType:   fileType,
			Score:      m.Score,
			Text:       m.Metadata.Text,
			TextLength: len(m.Metadata.Text),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":         query,
		"total_matches": len(matches),
		"matches":       matches,
	})
}

func (s *Server) debugUploadLogs(c *gin.Context) {
	all := s.deps.Uploads.RecentEvents(0)
	recent := all
	if len(recent) > recentUploadLogs {
		recent = recent[len(recent)-recentUploadLogs:]
	}
	c.JSON(http.StatusOK, gin.H{
		"total_logs":  len(all),
		"recent_logs": recent,
	})
}
