package event_sub

import (
	"encoding/json"
	"fmt"

	"twitchchat/internal/app/domain"
)

const (
	ChatNotification  = "channel.chat.notification"
	ChatClearUser     = "channel.chat.clear_user_messages"
	RewardRedemption  = "channel.channel_points_custom_reward_redemption.add"
	announcementColor = "PRIMARY"
)

// convertNotification maps one notification event to a chat log entry.
// ok is false for events the client does not show.
func convertNotification(subType string, raw json.RawMessage) (msg domain.TwitchMessage, ok bool, err error) {
	switch subType {
	case ChatNotification:
		var ev ChatNotificationEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", subType, err)
		}

		switch ev.NoticeType {
		case "raid":
			if ev.Raid == nil {
				return nil, false, nil
			}
			return domain.RaidNotice{
				UserID:      ev.Raid.UserID,
				DisplayName: ev.Raid.UserName,
				Notice:      ev.SystemMessage,
			}, true, nil

		case "announcement":
			color := announcementColor
			if ev.Announcement != nil && ev.Announcement.Color != "" {
				color = ev.Announcement.Color
			}
			return domain.AnnouncementMessage{
				DisplayName: ev.ChatterUserName,
				Color:       color,
				Message:     ev.Message.Text,
			}, true, nil
		}
		return nil, false, nil

	case ChatClearUser:
		var ev ClearUserMessagesEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", subType, err)
		}

		name := ev.TargetUserName
		if name == "" {
			name = ev.TargetUserLogin
		}
		if name == "" {
			return nil, false, nil
		}
		return domain.ClearMessageByUser{DisplayName: name}, true, nil

	case RewardRedemption:
		var ev RewardRedemptionEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", subType, err)
		}
		return domain.RedeemMessage{
			UserName:    ev.UserName,
			RewardTitle: ev.Reward.Title,
			Cost:        ev.Reward.Cost,
		}, true, nil
	}

	return nil, false, nil
}
