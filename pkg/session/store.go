package session

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/region"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Record is the persisted form of a Session. Loaded images are not
// persisted; they are reloaded from their URLs.
type Record struct {
	ID         string             `json:"id"`
	View       string             `json:"view,omitempty"`
	ProductID  region.ID          `json:"productId,omitempty"`
	Mode       string             `json:"mode,omitempty"`
	Region     *region.Region     `json:"region,omitempty"`
	Transform  *artwork.Transform `json:"transform,omitempty"`
	ArtworkURL string             `json:"artworkUrl,omitempty"`
	Pending    *artwork.Config    `json:"pending,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	// Version counts saves. A live copy older than the stored record is
	// refreshed before use.
	Version    uint64             `json:"version"`
	CreatedAt  time.Time          `json:"createdAt"`
	ExpiresAt  time.Time          `json:"expiresAt"`
}

// IsExpired returns true if the record has expired.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Restore rebuilds a live session from rec.
func Restore(rec *Record, logger *log.Logger) (*Session, error) {
	mode, err := bounds.ParseMode(rec.Mode)
	if err != nil {
		return nil, err
	}
	s := New(rec.ID, mode, logger)
	s.createdAt = rec.CreatedAt
	if err := s.load(rec); err != nil {
		return nil, err
	}
	return s, nil
}

// load replaces s's persisted state with rec. The loaded artwork image is
// kept only while the artwork URL and placement survive; the product
// background is kept while the product does.
func (s *Session) load(rec *Record) error {
	s.view = rec.View
	if rec.ProductID != s.productID {
		s.bg = nil
	}
	s.productID = rec.ProductID
	if rec.ArtworkURL != s.artworkURL || rec.Transform == nil {
		s.art = nil
	}
	s.artworkURL = rec.ArtworkURL
	s.pending = rec.Pending
	s.warnings = slices.Clone(rec.Warnings)
	s.expiresAt = rec.ExpiresAt
	s.version = rec.Version
	if rec.Region == nil {
		s.tr = nil
		return nil
	}
	if err := s.setRegion(*rec.Region, rec.View); err != nil {
		return err
	}
	if rec.Transform == nil {
		s.tr.RemoveArtwork()
		return nil
	}
	_, err := s.tr.SetArtwork(*rec.Transform)
	return err
}

// refresh brings a live session up to date with a newer stored record.
func (s *Session) refresh(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Version <= s.version {
		return nil
	}
	return s.load(rec)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a record by ID.
	// Returns nil, nil if it doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Set stores a record until its ExpiresAt.
	Set(ctx context.Context, rec *Record) error

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired records (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
