package domain

// ChangeType describes what happened to a watched file.
type ChangeType string

// File change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// FileChange is a file that appeared or changed under a watched folder.
type FileChange struct {
	Type ChangeType
	Path string
}

// FileResult is the outcome of ingesting one file from a batch.
type FileResult struct {
	Path   string        `json:"path"`
	Report *IngestReport `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// OK reports whether the file was ingested.
func (r FileResult) OK() bool {
	return r.Error == ""
}
