package storage

import (
	"sync"

	"github.com/google/uuid"
	"github.com/invoicer/invoicer/internal/models"
)

const refPrefix = "blob:invoicer/"

// PreviewStore hands out temporary references to selected images. A
// reference stays resolvable until it is revoked.
type PreviewStore struct {
	previews map[string]*models.UploadSelection
	mu       sync.RWMutex
}

func New() *PreviewStore {
	return &PreviewStore{
		previews: make(map[string]*models.UploadSelection),
	}
}

// Create registers the selection and returns its reference
func (s *PreviewStore) Create(sel *models.UploadSelection) string {
	ref := refPrefix + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[ref] = sel
	return ref
}

func (s *PreviewStore) Get(ref string) (*models.UploadSelection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, exists := s.previews[ref]
	return sel, exists
}

// Revoke releases a reference. Unknown references are ignored.
func (s *PreviewStore) Revoke(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previews, ref)
}

// Len reports how many references are live
func (s *PreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.previews)
}
