// Package vector opens the configured vector index and the conversation
// store that lives next to it.
package vector

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Stores bundles the storage a running instance needs.
type Stores struct {
	Index         driven.VectorIndex
	Conversations driven.ConversationStore

	// Location describes where vectors live, for status output.
	Location string

	closers []io.Closer
}

// Close closes the index and any backing database.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Open creates the stores for the configured backend. Conversations are
// kept in SQLite for every persistent backend and in memory otherwise.
func Open(settings domain.VectorSettings) (*Stores, error) {
	if settings.Backend == domain.VectorBackendMemory {
		return &Stores{
			Index:         memory.NewVectorIndex(),
			Conversations: memory.NewConversationStore(),
			Location:      "memory",
		}, nil
	}

	dataDir := settings.Path
	if dataDir == "" {
		var err error
		if dataDir, err = sqlite.DefaultDataDir(); err != nil {
			return nil, err
		}
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	stores := &Stores{
		Conversations: db.ConversationStore(),
		closers:       []io.Closer{db},
	}

	switch settings.Backend {
	case domain.VectorBackendSQLite, "":
		stores.Index = db.VectorIndex(settings.Collection)
		stores.Location = db.Path()
	case domain.VectorBackendChromem:
		path := filepath.Join(dataDir, "chromem")
		idx, err := chromem.New(path, settings.Collection)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		stores.Index = idx
		stores.Location = path
	case domain.VectorBackendQdrant:
		stores.Index = qdrant.New(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: settings.Collection,
		})
		stores.Location = settings.URL
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported vector backend: %s", settings.Backend)
	}

	stores.closers = append([]io.Closer{stores.Index}, stores.closers...)
	return stores, nil
}
