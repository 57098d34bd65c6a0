package event_sub

import "encoding/json"

type EventSubMessage struct {
	Metadata struct {
		MessageID   string `json:"message_id"`
		MessageType string `json:"message_type"`
	} `json:"metadata"`
	Payload json.RawMessage `json:"payload"`
}

type SessionPayload struct {
	Session struct {
		ID                      string `json:"id"`
		Status                  string `json:"status"`
		KeepaliveTimeoutSeconds int    `json:"keepalive_timeout_seconds"`
		ReconnectURL            string `json:"reconnect_url"`
	} `json:"session"`
}

type EventSubEnvelope struct {
	Subscription struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Version string `json:"version"`
	} `json:"subscription"`
	Event json.RawMessage `json:"event"`
}

type ChatNotificationEvent struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	ChatterUserID     string `json:"chatter_user_id"`
	ChatterUserLogin  string `json:"chatter_user_login"`
	ChatterUserName   string `json:"chatter_user_name"`
	Color             string `json:"color"`
	NoticeType        string `json:"notice_type"`
	SystemMessage     string `json:"system_message"`
	MessageID         string `json:"message_id"`

	Message struct {
		Text string `json:"text"`
	} `json:"message"`

	Raid *struct {
		UserID      string `json:"user_id"`
		UserName    string `json:"user_name"`
		UserLogin   string `json:"user_login"`
		ViewerCount int    `json:"viewer_count"`
	} `json:"raid"`

	Announcement *struct {
		Color string `json:"color"`
	} `json:"announcement"`
}

type ClearUserMessagesEvent struct {
	BroadcasterUserID string `json:"broadcaster_user_id"`
	TargetUserID      string `json:"target_user_id"`
	TargetUserLogin   string `json:"target_user_login"`
	TargetUserName    string `json:"target_user_name"`
}

type RewardRedemptionEvent struct {
	ID                string `json:"id"`
	BroadcasterUserID string `json:"broadcaster_user_id"`
	UserID            string `json:"user_id"`
	UserLogin         string `json:"user_login"`
	UserName          string `json:"user_name"`
	UserInput         string `json:"user_input"`
	Status            string `json:"status"`

	Reward struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Cost   int    `json:"cost"`
		Prompt string `json:"prompt"`
	} `json:"reward"`
}
