// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// USER / SESSION TESTS
// =============================================================================

func TestUser_RoundTripKeepsUnknownFields(t *testing.T) {
	in := `{"id":42,"email":"ada@example.com","plan":"free"}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(in), &u))
	assert.Equal(t, "ada@example.com", u.Email)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestUser_MarshalWithoutRaw(t *testing.T) {
	out, err := json.Marshal(NewUser("ada@example.com"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"ada@example.com"}`, string(out))
}

func TestUser_NullIsZero(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte("null"), &u))
	assert.True(t, u.IsZero())
}

func TestSession_Authenticated(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"both present", Session{User: NewUser("a@b.c"), Token: "t"}, true},
		{"missing token", Session{User: NewUser("a@b.c")}, false},
		{"missing user", Session{Token: "t"}, false},
		{"empty", Session{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Authenticated())
		})
	}
}

// =============================================================================
// RATE LIMIT TESTS
// =============================================================================

func TestDefaultRateLimit(t *testing.T) {
	assert.Equal(t, RateLimitStatus{Limit: 10, Used: 0, Remaining: 10}, DefaultRateLimit())
	assert.False(t, DefaultRateLimit().Exhausted())
}

func TestRateLimitStatus_DecodeVerbatim(t *testing.T) {
	// Remaining is taken as reported even when it disagrees with limit-used.
	var r RateLimitStatus
	require.NoError(t, json.Unmarshal([]byte(`{"limit":10,"used":4,"remaining":0}`), &r))
	assert.Equal(t, 0, r.Remaining)
	assert.True(t, r.Exhausted())
	assert.Equal(t, "4/10 used, 0 left", r.String())
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendAssignsMonotonicIDs(t *testing.T) {
	tr := NewTranscript()
	fixed := time.Date(2025, 3, 1, 9, 5, 0, 0, time.Local)
	tr.now = func() time.Time { return fixed }

	first := tr.Append(SenderUser, "hi")
	second := tr.Append(SenderAI, "hello")

	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)
	assert.Equal(t, "09:05", first.Timestamp)
	assert.True(t, second.IsAI())
	assert.False(t, first.IsAI())

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "hello", msgs[1].Text)
}

func TestTranscript_MessagesIsACopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SenderUser, "original")

	msgs := tr.Messages()
	msgs[0].Text = "mutated"

	assert.Equal(t, "original", tr.Messages()[0].Text)
}

func TestTranscript_Last(t *testing.T) {
	tr := NewTranscript()
	_, ok := tr.Last()
	assert.False(t, ok)

	tr.Append(SenderUser, "a")
	tr.Append(SenderAI, "b")
	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.Text)
}

func TestTranscript_ClearKeepsIDsIncreasing(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SenderUser, "a")
	tr.Append(SenderAI, "b")
	tr.Clear()

	assert.Zero(t, tr.Len())
	next := tr.Append(SenderUser, "c")
	assert.Equal(t, uint64(3), next.ID)
}

func TestTranscript_ConcurrentAppend(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Append(SenderUser, "x")
		}()
	}
	wg.Wait()

	msgs := tr.Messages()
	require.Len(t, msgs, 50)
	for i, m := range msgs {
		assert.Equal(t, uint64(i+1), m.ID, "IDs follow append order")
	}
}

func TestSender_DisplayName(t *testing.T) {
	assert.Equal(t, "You", SenderUser.DisplayName())
	assert.Equal(t, "Assistant", SenderAI.DisplayName())
}
