package framework

import "context"

// MemoryView is the read-only rendering of conversation memory handed to the
// prompt builder each turn. Recent is a defensive copy; mutating it does not
// touch the underlying buffer.
type MemoryView struct {
	Summary string
	Recent  []Message
}

// ConversationMemory owns the hybrid summary+buffer state for one
// conversation. Record and Render are mutually exclusive per conversation:
// readers always see a consistent snapshot, never a partially updated buffer.
//
// Record does not return an error. A failed summarization inside Record keeps
// the previous summary and drops the overflow with a logged warning; a stale
// summary is preferred over blocking the turn.
type ConversationMemory interface {
	Record(ctx context.Context, user, assistant Message)
	Render() MemoryView
}
