// Package httpapi exposes the chat core over HTTP with gin.
//
// Routes:
//
//	GET  /                     service banner
//	GET  /health               liveness
//	POST /chat                 ask a question
//	POST /upload               multipart upload, ingested in the background
//	GET  /supported-formats    upload allow-list by category
//	GET  /debug-search/:query  filtered retrieval results
//	GET  /debug-upload-logs    recent ingestion events
//	GET  /metrics              Prometheus exposition, when metrics are wired
package httpapi
