package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidMessageShape is returned when a message is constructed with an
// author identity that contradicts its author kind.
var ErrInvalidMessageShape = errors.New("invalid message shape")

type AuthorKind string

const (
	AuthorUser  AuthorKind = "user"
	AuthorAgent AuthorKind = "agent"
)

type MessageKind string

const (
	KindChat              MessageKind = "chat"
	KindSystemPlaceholder MessageKind = "system-placeholder"
)

type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

type MessageList []Message

// Message is the unit of conversation. ID is assigned by whichever party
// first creates the record and is not stable across the optimistic→durable
// transition; CorrelationKey is the only identity that survives it.
type Message struct {
	ID             string       `db:"id" json:"id"`
	CorrelationKey string       `db:"correlation_key" json:"correlation_key,omitempty"`
	RoomID         string       `db:"room_id" json:"room_id"`
	AuthorKind     AuthorKind   `db:"author_kind" json:"author_kind"`
	UserAuthorID   string       `db:"user_author_id" json:"user_author_id,omitempty"`
	AgentAuthorID  string       `db:"agent_author_id" json:"agent_author_id,omitempty"`
	Kind           MessageKind  `db:"kind" json:"kind"`
	Body           string       `db:"body" json:"body"`
	Attachments    []Attachment `db:"-" json:"attachments,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	Pending        bool         `db:"-" json:"pending"`
}

// NewUserMessage builds an optimistic user-authored message.
func NewUserMessage(roomID, userID, correlationKey, body string, attachments []Attachment) (Message, error) {
	m := Message{
		CorrelationKey: correlationKey,
		RoomID:         roomID,
		AuthorKind:     AuthorUser,
		UserAuthorID:   userID,
		Kind:           KindChat,
		Body:           body,
		Attachments:    attachments,
		CreatedAt:      time.Now(),
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// NewAgentMessage builds an optimistic agent-authored message. An empty
// agentID produces an unattributed agent message, which is valid.
func NewAgentMessage(roomID, agentID, correlationKey, body string) (Message, error) {
	m := Message{
		CorrelationKey: correlationKey,
		RoomID:         roomID,
		AuthorKind:     AuthorAgent,
		AgentAuthorID:  agentID,
		Kind:           KindChat,
		Body:           body,
		CreatedAt:      time.Now(),
		Pending:        true,
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate enforces the author-kind / author-identity exclusivity invariant.
func (m Message) Validate() error {
	switch m.AuthorKind {
	case AuthorUser:
		if m.UserAuthorID == "" || m.AgentAuthorID != "" {
			return ErrInvalidMessageShape
		}
	case AuthorAgent:
		if m.UserAuthorID != "" {
			return ErrInvalidMessageShape
		}
	default:
		return ErrInvalidMessageShape
	}
	return nil
}

// Displayable reports whether the message carries renderable content.
// System placeholders and whitespace-only bodies never enter a transcript.
func (m Message) Displayable() bool {
	if m.Kind == KindSystemPlaceholder {
		return false
	}
	return strings.TrimSpace(m.Body) != ""
}

// SenderKey resolves the identity used for grouping: the user id for user
// messages, the agent id for agent messages, "" for unattributed agents.
func (m Message) SenderKey() string {
	if m.AuthorKind == AuthorUser {
		return m.UserAuthorID
	}
	return m.AgentAuthorID
}
