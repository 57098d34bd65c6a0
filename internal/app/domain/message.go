package domain

import (
	"fmt"
	"time"
)

type MessageType string

const (
	TypeChat         MessageType = "chat"
	TypeRaid         MessageType = "raid"
	TypeClear        MessageType = "clear"
	TypeClearByUser  MessageType = "clear_by_user"
	TypeRedeem       MessageType = "redeem"
	TypeAnnouncement MessageType = "announcement"
	TypeUnknown      MessageType = "unknown"
)

// TwitchMessage is implemented by every event the client can show or act on.
// Consumers switch on the concrete type.
type TwitchMessage interface {
	Type() MessageType
}

type Emote struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type ChatMessage struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"` // badge glyphs followed by the sender
	DisplayName string `json:"display_name"`
	Channel     string `json:"channel"`
	Message     string `json:"message"`
	Color       string `json:"color"`
	AnimationID string `json:"animation_id,omitempty"`

	Badges []string `json:"badges,omitempty"`
	Emotes []Emote  `json:"emotes,omitempty"`

	FirstMsg         bool `json:"first_msg"`
	ReturningChatter bool `json:"returning_chatter"`
	Subscriber       bool `json:"subscriber"`
	Moderator        bool `json:"moderator"`

	Timestamp time.Time `json:"timestamp"`
	Raw       string    `json:"-"`
}

func (ChatMessage) Type() MessageType { return TypeChat }

type RaidNotice struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Notice      string `json:"notice"`
}

func (RaidNotice) Type() MessageType { return TypeRaid }

// ClearMessage removes a single message from the chat log.
type ClearMessage struct {
	DisplayName string `json:"display_name"`
	MessageID   string `json:"message_id"`
}

func (ClearMessage) Type() MessageType { return TypeClear }

// ClearMessageByUser removes everything a user said.
type ClearMessageByUser struct {
	DisplayName string `json:"display_name"`
}

func (ClearMessageByUser) Type() MessageType { return TypeClearByUser }

type RedeemMessage struct {
	UserName    string `json:"user_name"`
	RewardTitle string `json:"reward_title"`
	Cost        int    `json:"cost"`
}

func (RedeemMessage) Type() MessageType { return TypeRedeem }

func (r RedeemMessage) String() string {
	return fmt.Sprintf("%s redeemed %s for %d", r.UserName, r.RewardTitle, r.Cost)
}

type AnnouncementMessage struct {
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
	Message     string `json:"message"`
}

func (AnnouncementMessage) Type() MessageType { return TypeAnnouncement }

// UnknownMessage carries any line the client does not model.
type UnknownMessage struct {
	Raw string `json:"raw"`
}

func (UnknownMessage) Type() MessageType { return TypeUnknown }
