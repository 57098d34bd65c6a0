package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageTypes(t *testing.T) {
	tests := []struct {
		msg  TwitchMessage
		want MessageType
	}{
		{ChatMessage{}, TypeChat},
		{RaidNotice{}, TypeRaid},
		{ClearMessage{}, TypeClear},
		{ClearMessageByUser{}, TypeClearByUser},
		{RedeemMessage{}, TypeRedeem},
		{AnnouncementMessage{}, TypeAnnouncement},
		{UnknownMessage{}, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Type())
		})
	}
}

func TestRedeemMessageString(t *testing.T) {
	m := RedeemMessage{UserName: "alice", RewardTitle: "Hydrate", Cost: 500}
	assert.Equal(t, "alice redeemed Hydrate for 500", m.String())
}

func TestEmoteURL(t *testing.T) {
	assert.Equal(t, "https://static-cdn.jtvnw.net/emoticons/v2/25/default/dark/1.0", EmoteURL("25"))
}
