package chat

import "scribe-ai/core/internal/model"

// Source says which reconciliation channel produced an update. The push
// channel is lower latency; the poll channel survives a frontend restart.
type Source int

const (
	SourcePush Source = iota
	SourcePoll
)

func (s Source) String() string {
	if s == SourcePoll {
		return "poll"
	}
	return "push"
}

// Update is one observation of an in-flight message from either channel.
// A nil Content leaves the current content untouched; a non-nil Content
// replaces it wholesale (content is cumulative on the wire, so last
// write wins and no diffing is needed).
type Update struct {
	Content *string
	Status  model.MessageStatus
	Error   string
}

// Merge reconciles one update into the current view of a message and
// returns the next view. It is a pure function so the push/poll race
// reduces to a testable set of rules:
//
//   - A terminal status is final. Updates against a message that already
//     reached complete, error or cancelled are dropped entirely, which
//     also covers the late stream event arriving after a local cancel.
//   - Status only moves forward: an update's status applies only when
//     its rank is at least the current one, so a stale poll result can
//     never demote streaming back to pending.
//   - Content is last-write-wins whenever the update carries any.
//
// The rules are deliberately identical for both sources; src exists so
// callers can log where a merge came from.
func Merge(current model.ChatMessage, upd Update, src Source) model.ChatMessage {
	_ = src

	if current.Status.Terminal() {
		return current
	}

	next := current
	if upd.Content != nil {
		next.Content = *upd.Content
	}
	if upd.Status != "" && upd.Status.Rank() >= current.Status.Rank() {
		next.Status = upd.Status
		if upd.Status == model.StatusError || upd.Status == model.StatusCancelled {
			next.Error = upd.Error
		}
	}
	return next
}
