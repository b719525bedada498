package callstate

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the "to" marker for messages addressed to no particular agent.
const Broadcast = "all"

// Message is one entry in the audit log. Messages are immutable once created
// and purely observational — no control-flow decision ever reads one back.
type Message struct {
	// ID is an opaque unique token used for de-duplication during merges.
	ID string `json:"id"`

	// From identifies the agent that produced the message.
	From string `json:"from"`

	// To identifies the recipient agent, or [Broadcast].
	To string `json:"to"`

	// Content is the human-readable summary of what the agent did.
	Content string `json:"content"`

	// Timestamp is the wall-clock creation time.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a Message with a fresh ID and the current time.
func NewMessage(from, to, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// MessageLog is the ordered, append-only audit log.
type MessageLog []Message

// Contains reports whether the log already holds a message with the given ID.
func (l MessageLog) Contains(id string) bool {
	for _, m := range l {
		if m.ID == id {
			return true
		}
	}
	return false
}

// AppendUnique appends every message whose ID is not already present and
// returns the extended log. This guards merge paths against double-insertion
// when a branch echoes a message it was handed in its snapshot.
func (l MessageLog) AppendUnique(msgs ...Message) MessageLog {
	out := l
	for _, m := range msgs {
		if !out.Contains(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

// ByFrom builds a secondary index of the log keyed by sender, preserving
// insertion order within each group. The index is built once per call; it is
// the reading layer's grouping view, not a live structure.
func (l MessageLog) ByFrom() map[string][]Message {
	idx := make(map[string][]Message)
	for _, m := range l {
		idx[m.From] = append(idx[m.From], m)
	}
	return idx
}
