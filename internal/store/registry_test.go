package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_DuplicateUsername(t *testing.T) {
	r := NewUserRegistry()

	first, err := r.Register("Ada", "ada", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = r.Register("Ada Again", "ada", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, 1, r.Len())
}

func TestRegister_UsernameIsCaseSensitive(t *testing.T) {
	r := NewUserRegistry()

	_, err := r.Register("Ada", "ada", "pw")
	require.NoError(t, err)
	_, err = r.Register("Ada", "Ada", "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegister_Fields(t *testing.T) {
	r := NewUserRegistry()
	fixed := time.UnixMilli(1_700_000_000_123)
	r.now = func() time.Time { return fixed }

	u, err := r.Register("Grace", "grace", "cobol")
	require.NoError(t, err)

	assert.Equal(t, "Grace", u.Name)
	assert.Equal(t, "grace", u.Username)
	assert.Equal(t, "cobol", u.Password)
	assert.Equal(t, 0, u.TotalSessions)
	assert.Equal(t, 0, u.MasteredCards)
	assert.Equal(t, fixed.UnixMilli(), u.CreatedAt)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	r := NewUserRegistry()

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Register("x", "same", "pw"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, r.Len())
}

func TestAuthenticate(t *testing.T) {
	r := NewUserRegistry()
	u, err := r.Register("Ada", "ada", "Secret")
	require.NoError(t, err)

	got, err := r.Authenticate("ada", "Secret")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = r.Authenticate("ada", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.Authenticate("ada", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.Authenticate("ADA", "Secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCounters(t *testing.T) {
	r := NewUserRegistry()
	u, err := r.Register("Ada", "ada", "pw")
	require.NoError(t, err)

	got, err := r.IncrementSessions(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalSessions)

	got, err = r.SetMastered(u.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got.MasteredCards)

	got, err = r.SetMastered(u.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, got.MasteredCards)

	got, err = r.AddMastered(u.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, got.MasteredCards)

	stored, err := r.Get(u.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUnknownUser(t *testing.T) {
	r := NewUserRegistry()

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.IncrementSessions("nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.SetMastered("nope", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = r.AddMastered("nope", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Equal(t, 0, r.Len())
}

func TestReturnedUsersAreCopies(t *testing.T) {
	r := NewUserRegistry()
	u, err := r.Register("Ada", "ada", "pw")
	require.NoError(t, err)

	u.MasteredCards = 99
	all := r.All()
	all[0].TotalSessions = 42

	stored, err := r.Get(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.MasteredCards)
	assert.Equal(t, 0, stored.TotalSessions)
}

func TestReplace(t *testing.T) {
	r := NewUserRegistry()
	_, err := r.Register("Old", "old", "pw")
	require.NoError(t, err)

	r.Replace([]User{
		{ID: "a", Username: "a"},
		{ID: "b", Username: "b", MasteredCards: 2},
	})

	assert.Equal(t, 2, r.Len())
	b, err := r.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 2, b.MasteredCards)

	_, err = r.Register("A", "a", "pw")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
