package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow-cli/internal/model"
)

// MemoryStore implements Store with an in-process map. It is the default
// driver and the one tests use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
	}
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(sess), nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return eris.New("memory: save session: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) ListSessions(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if filter.Temperature != "" && sess.Profile.Temperature != filter.Temperature {
			continue
		}
		out = append(out, *copySession(sess))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []model.Session{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// copySession deep-copies the mutable parts so callers never share slices
// with the map.
func copySession(in *model.Session) *model.Session {
	out := *in
	out.Turns = append([]model.ConversationTurn(nil), in.Turns...)
	out.Profile.PagesViewed = append([]string(nil), in.Profile.PagesViewed...)
	out.Qualification.Competitors = append([]string(nil), in.Qualification.Competitors...)
	return &out
}
