package irisfast

import "errors"

var ErrUserNotFound = errors.New("user not found in room")

// Message is one inbound chat event pushed over the bridge WebSocket.
type Message struct {
	Room   string     `json:"room"`
	Msg    string     `json:"msg"`
	Sender *string    `json:"sender,omitempty"`
	JSON   *KakaoMeta `json:"json,omitempty"`
}

// KakaoMeta carries the decoded sender fields when the bridge provides
// them.
type KakaoMeta struct {
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// UserRef identifies a resolved room member.
type UserRef struct {
	ID   string
	Name string
}

type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

type ReplyResponse struct {
	MessageID string `json:"message_id,omitempty"`
}

type DeleteRequest struct {
	Room      string `json:"room"`
	MessageID string `json:"message_id"`
}

type UserQueryRequest struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

type UserQueryResponse struct {
	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// WebSocketState tracks the bridge connection lifecycle.
type WebSocketState string

const (
	WSStateDisconnected WebSocketState = "disconnected"
	WSStateConnecting   WebSocketState = "connecting"
	WSStateConnected    WebSocketState = "connected"
	WSStateReconnecting WebSocketState = "reconnecting"
	WSStateFailed       WebSocketState = "failed"
)
