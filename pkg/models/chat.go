// Package models contains the chat domain types and analysis result models.
package models

import "strings"

// Fragment is one span of a chat message: plain text or a recognized emote.
// Emote recognition is boolean at this level; the scorer decides what a
// recognized emote is worth.
type Fragment interface {
	// Body returns the rendered text of the span.
	Body() string

	fragment()
}

// TextFragment is an ordinary text span.
type TextFragment struct {
	Text string
}

// EmoteFragment is a span the upstream feed recognized as an emote.
type EmoteFragment struct {
	Name string
	ID   string
}

func (f TextFragment) Body() string { return f.Text }
func (TextFragment) fragment()      {}

func (f EmoteFragment) Body() string { return f.Name }
func (EmoteFragment) fragment()      {}

// ChatMessage is a single replay chat entry. OffsetSeconds counts whole
// seconds from video start. Author may be empty (deleted accounts, system
// messages). Text is the fragment bodies joined in order.
type ChatMessage struct {
	OffsetSeconds int
	Author        string
	Fragments     []Fragment
	Text          string
}

// NewChatMessage builds a ChatMessage with Text derived from the fragments.
func NewChatMessage(offsetSeconds int, author string, fragments []Fragment) ChatMessage {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.Body())
	}
	return ChatMessage{
		OffsetSeconds: offsetSeconds,
		Author:        author,
		Fragments:     fragments,
		Text:          b.String(),
	}
}
