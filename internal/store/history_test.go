package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_UnknownUserIsEmpty(t *testing.T) {
	s := NewHistoryStore()

	got := s.List("nobody")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistory_AppendKeepsOrder(t *testing.T) {
	s := NewHistoryStore()
	s.Init("u1")

	for i := 0; i < 3; i++ {
		s.Append("u1", ChatMessage{Role: RoleAssistant, Topic: fmt.Sprintf("t%d", i)})
	}

	got := s.List("u1")
	require.Len(t, got, 3)
	for i, m := range got {
		assert.Equal(t, fmt.Sprintf("t%d", i), m.Topic)
	}
}

func TestHistory_AppendCreatesMissingLog(t *testing.T) {
	s := NewHistoryStore()

	s.Append("ghost", ChatMessage{Topic: "x"})

	assert.Len(t, s.List("ghost"), 1)
}

func TestHistory_InitDoesNotReset(t *testing.T) {
	s := NewHistoryStore()
	s.Append("u1", ChatMessage{Topic: "x"})

	s.Init("u1")

	assert.Len(t, s.List("u1"), 1)
	assert.Contains(t, s.All(), "u1")
}

func TestHistory_ConcurrentAppends(t *testing.T) {
	s := NewHistoryStore()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append("u1", ChatMessage{Topic: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.List("u1"), n)
}

func TestHistory_ListIsACopy(t *testing.T) {
	s := NewHistoryStore()
	s.Append("u1", ChatMessage{Topic: "orig"})

	got := s.List("u1")
	got[0].Topic = "changed"
	all := s.All()
	all["u1"][0].Topic = "changed too"

	assert.Equal(t, "orig", s.List("u1")[0].Topic)
}

func TestHistory_Replace(t *testing.T) {
	s := NewHistoryStore()
	s.Append("old", ChatMessage{})

	s.Replace(map[string][]ChatMessage{"new": {{Topic: "a"}, {Topic: "b"}}})

	assert.Empty(t, s.List("old"))
	assert.Equal(t, []ChatMessage{{Topic: "a"}, {Topic: "b"}}, s.List("new"))
}
