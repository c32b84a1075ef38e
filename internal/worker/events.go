package worker

import "github.com/book-expert/events"

// ReplyKind tells consumers how to render a ReplyEvent.
type ReplyKind string

// Reply kinds.
const (
	ReplyText       ReplyKind = "text"
	ReplyRecord     ReplyKind = "record"
	ReplyAttachment ReplyKind = "attachment"
)

// CommandEvent is one chat message forwarded by a chat gateway.
type CommandEvent struct {
	Header   events.EventHeader `json:"header"`
	ChatID   string             `json:"chat_id"`
	UserID   string             `json:"user_id"`
	Text     string             `json:"text"`
	IsMaster bool               `json:"is_master"`
	// ReplySubject overrides the worker's reply subject for this command.
	ReplySubject string `json:"reply_subject,omitempty"`
}

// ReplyEvent is one reply to a CommandEvent. A record reply carries either
// URL or AudioKey, the latter naming an object in the audio bucket.
type ReplyEvent struct {
	Header   events.EventHeader `json:"header"`
	ChatID   string             `json:"chat_id"`
	Kind     ReplyKind          `json:"kind"`
	Text     string             `json:"text,omitempty"`
	URL      string             `json:"url,omitempty"`
	AudioKey string             `json:"audio_key,omitempty"`
}
