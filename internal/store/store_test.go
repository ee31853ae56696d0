package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadflow-cli/internal/model"
)

// storeFactories builds each driver against a fresh backing file so the
// shared conformance tests run over both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			require.NoError(t, s.Migrate(context.Background()))
			return s
		},
	}
}

func testSession(id string) *model.Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Session{
		ID: id,
		Profile: model.LeadProfile{
			Name:        "Maria Garcia",
			Email:       "maria@garcia-dental.com",
			Temperature: model.TemperatureWarm,
		},
		Turns: []model.ConversationTurn{
			{Timestamp: now, Role: model.RoleUser, Text: "hi there", Type: model.TypeGreeting},
			{Timestamp: now.Add(time.Second), Role: model.RoleAssistant, Text: "hello!"},
		},
		AICost:    0.0042,
		CreatedAt: now,
		UpdatedAt: now.Add(time.Second),
	}
}

func TestStore_SaveAndGetSession(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			require.NoError(t, s.SaveSession(ctx, testSession("s1")))

			got, err := s.GetSession(ctx, "s1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "s1", got.ID)
			assert.Equal(t, "Maria Garcia", got.Profile.Name)
			assert.Equal(t, model.TemperatureWarm, got.Profile.Temperature)
			assert.InDelta(t, 0.0042, got.AICost, 1e-9)
			require.Len(t, got.Turns, 2)
			assert.Equal(t, model.RoleUser, got.Turns[0].Role)
			assert.Equal(t, "hi there", got.Turns[0].Text)
			assert.Equal(t, model.TypeGreeting, got.Turns[0].Type)
		})
	}
}

func TestStore_GetSession_Unknown(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			got, err := s.GetSession(context.Background(), "missing")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_SaveSession_MissingID(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			assert.Error(t, s.SaveSession(context.Background(), &model.Session{}))
		})
	}
}

func TestStore_CRMSyncedSurvivesRoundTrip(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			sess := testSession("s1")
			sess.CRMSynced = true
			require.NoError(t, s.SaveSession(ctx, sess))

			got, err := s.GetSession(ctx, "s1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.CRMSynced)

			list, err := s.ListSessions(ctx, SessionFilter{})
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.True(t, list[0].CRMSynced)
		})
	}
}

func TestStore_SaveSession_Overwrites(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			sess := testSession("s1")
			require.NoError(t, s.SaveSession(ctx, sess))

			sess.Profile.Name = "Maria G. Garcia"
			sess.AICost = 0.01
			sess.Turns = sess.Turns[:1]
			require.NoError(t, s.SaveSession(ctx, sess))

			got, err := s.GetSession(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "Maria G. Garcia", got.Profile.Name)
			assert.InDelta(t, 0.01, got.AICost, 1e-9)
			assert.Len(t, got.Turns, 1)
		})
	}
}

func TestStore_ListSessions(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			a := testSession("a")
			b := testSession("b")
			b.CreatedAt = a.CreatedAt.Add(time.Minute)
			b.Profile.Temperature = model.TemperatureHot
			require.NoError(t, s.SaveSession(ctx, a))
			require.NoError(t, s.SaveSession(ctx, b))

			all, err := s.ListSessions(ctx, SessionFilter{})
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "a", all[0].ID)
			assert.Equal(t, "b", all[1].ID)

			hot, err := s.ListSessions(ctx, SessionFilter{Temperature: model.TemperatureHot})
			require.NoError(t, err)
			require.Len(t, hot, 1)
			assert.Equal(t, "b", hot[0].ID)

			limited, err := s.ListSessions(ctx, SessionFilter{Limit: 1, Offset: 1})
			require.NoError(t, err)
			require.Len(t, limited, 1)
			assert.Equal(t, "b", limited[0].ID)
		})
	}
}

func TestStore_DeleteSession(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			require.NoError(t, s.SaveSession(ctx, testSession("s1")))
			require.NoError(t, s.DeleteSession(ctx, "s1"))

			got, err := s.GetSession(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, got)

			// Deleting an unknown id is a no-op.
			assert.NoError(t, s.DeleteSession(ctx, "missing"))
		})
	}
}

func TestMemoryStore_CopyIsolation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	sess := testSession("s1")
	require.NoError(t, s.SaveSession(ctx, sess))

	// Mutating the caller's copy must not leak into the store.
	sess.Turns[0].Text = "mutated"
	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got.Turns[0].Text)

	// Mutating a fetched copy must not leak either.
	got.Profile.Name = "Someone Else"
	again, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Garcia", again.Profile.Name)
}
