package model

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
)

// ChannelEvent is one frame delivered by the push channel.
type ChannelEvent struct {
	Kind    EventKind `json:"kind"`
	Message Message   `json:"message"`
}

// ReplyPayload is the responder webhook's answer to one send.
type ReplyPayload struct {
	Message string `json:"message,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	Error   string `json:"error,omitempty"`
}
