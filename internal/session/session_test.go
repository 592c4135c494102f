package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type result struct{ score int }

func TestState_Lifecycle(t *testing.T) {
	var s State[result]
	assert.False(t, s.Loading())
	assert.Nil(t, s.Result())

	tk := s.Begin("first")
	assert.True(t, s.Loading())
	assert.Equal(t, "first", s.Prompt())

	assert.True(t, s.Complete(tk, &result{score: 10}))
	assert.False(t, s.Loading())
	assert.Equal(t, 10, s.Result().score)
	assert.Empty(t, s.Err())
}

func TestState_StaleResponseDiscarded(t *testing.T) {
	var s State[result]

	old := s.Begin("old")
	latest := s.Begin("new")

	// The newer request answers first.
	assert.True(t, s.Complete(latest, &result{score: 2}))
	// The late answer to the old request must not overwrite it.
	assert.False(t, s.Complete(old, &result{score: 1}))
	assert.False(t, s.Fail(old, "timeout"))

	assert.Equal(t, 2, s.Result().score)
	assert.Empty(t, s.Err())
	assert.Equal(t, "new", s.Prompt())
}

func TestState_StaleResponseWhileLoading(t *testing.T) {
	var s State[result]

	old := s.Begin("old")
	s.Begin("new")

	assert.False(t, s.Complete(old, &result{score: 1}))
	assert.True(t, s.Loading())
	assert.Nil(t, s.Result())
}

func TestState_ErrorClearsResult(t *testing.T) {
	var s State[result]

	tk := s.Begin("a")
	s.Complete(tk, &result{score: 5})

	tk = s.Begin("b")
	assert.Equal(t, 5, s.Result().score, "previous result stays while loading")

	assert.True(t, s.Fail(tk, "Failed to analyze prompt. Please try again."))
	assert.Nil(t, s.Result())
	assert.Equal(t, "Failed to analyze prompt. Please try again.", s.Err())

	tk = s.Begin("c")
	assert.Empty(t, s.Err(), "begin clears the error")
	s.Complete(tk, &result{score: 7})
	assert.Empty(t, s.Err())
}

func TestState_Reset(t *testing.T) {
	var s State[result]

	tk := s.Begin("a")
	s.Reset()

	assert.False(t, s.Complete(tk, &result{}))
	assert.False(t, s.Loading())
	assert.Nil(t, s.Result())
	assert.Empty(t, s.Prompt())
}

func TestState_ZeroTicketNeverCurrent(t *testing.T) {
	var s State[result]
	assert.False(t, s.Current(0))
	assert.False(t, s.Complete(0, &result{}))
}
