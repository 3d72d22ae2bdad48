// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAI:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// TimestampLayout renders message times as two-digit hour and minute.
const TimestampLayout = "15:04"

// Message is a single transcript entry.
type Message struct {
	// ID is unique and strictly increasing within a transcript.
	ID     uint64
	Text   string
	Sender Sender

	SentAt time.Time
	// Timestamp is SentAt in local time, formatted with TimestampLayout.
	Timestamp string
}

// IsAI reports whether the message should be rendered as Markdown.
func (m Message) IsAI() bool {
	return m.Sender == SenderAI
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the append-only, ordered message list of one run.
// It is safe for concurrent use.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	nextID   uint64

	// now is swapped in tests.
	now func() time.Time
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Append adds a message and returns it with its assigned ID and timestamp.
func (t *Transcript) Append(sender Sender, text string) Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	sentAt := t.now()
	msg := Message{
		ID:        t.nextID,
		Text:      text,
		Sender:    sender,
		SentAt:    sentAt,
		Timestamp: sentAt.Local().Format(TimestampLayout),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Messages returns a copy of the messages in append order.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Clear drops every message. IDs keep increasing, so an ID is never reused
// within one transcript.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the newest message, if any.
func (t *Transcript) Last() (Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}
