package session

import (
	"strings"
	"time"
)

const (
	userPrefix      = "User: "
	assistantPrefix = "Assistant: "

	// assistantMarker is the prompt suffix the upstream model completes from.
	assistantMarker = "Assistant:"
)

// Session holds one conversation's accumulated transcript.
type Session struct {
	ID        string    `json:"id"`
	History   string    `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppendUser appends a user turn to the transcript.
func (s *Session) AppendUser(text string) {
	s.History += userPrefix + text + "\n"
}

// AppendAssistant appends an assistant turn to the transcript.
func (s *Session) AppendAssistant(text string) {
	s.History += assistantPrefix + text + "\n"
}

// Prompt returns the full transcript with a trailing completion marker.
// The upstream model continues the conversation from that marker.
func (s *Session) Prompt() string {
	return s.History + assistantMarker
}

// Turns returns the number of completed transcript turns.
func (s *Session) Turns() int {
	return strings.Count(s.History, "\n")
}
