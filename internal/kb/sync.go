package kb

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bunge-labs/billbot/models"
)

// BillSource yields the authoritative bill records to mirror.
type BillSource interface {
	ListBills(ctx context.Context) ([]models.BillRecord, error)
}

// Upserter receives mirrored nodes. *Index satisfies it.
type Upserter interface {
	Upsert(n Node) error
}

// Synchronizer sweeps the relational bill store into the index. It is the
// only writer of indexed nodes.
type Synchronizer struct {
	Source BillSource
	Index  Upserter
	Logger *log.Logger
}

// NewSynchronizer wires a sweep from src into ix.
func NewSynchronizer(src BillSource, ix Upserter, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SYNC] ", log.LstdFlags)
	}
	return &Synchronizer{Source: src, Index: ix, Logger: logger}
}

// Sync performs one full sweep: every record is trimmed and merge-upserted
// keyed by id. The first failing record aborts the sweep; records merged
// before it stay committed. Returns the number of records merged.
func (s *Synchronizer) Sync(ctx context.Context) (int, error) {
	bills, err := s.Source.ListBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch bills: %w", err)
	}
	s.Logger.Printf("fetched %d bills from store", len(bills))

	synced := 0
	for _, b := range bills {
		n := Node{
			ID:          b.ID,
			Title:       strings.TrimSpace(b.Title),
			Description: strings.TrimSpace(b.TextContent),
			URL:         strings.TrimSpace(b.URL),
			FilePath:    strings.TrimSpace(b.FilePath),
		}
		if err := s.Index.Upsert(n); err != nil {
			s.Logger.Printf("sync aborted at bill %d after %d merged: %v", b.ID, synced, err)
			return synced, fmt.Errorf("upsert bill %d: %w", b.ID, err)
		}
		synced++
	}
	s.Logger.Printf("synchronized %d bills", synced)
	return synced, nil
}
