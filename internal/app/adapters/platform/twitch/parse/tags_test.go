package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  Tags
	}{
		{
			name:  "empty",
			block: "",
			want:  Tags{},
		},
		{
			name:  "simple pairs",
			block: "color=#8A2BE2;mod=0",
			want:  Tags{"color": "#8A2BE2", "mod": "0"},
		},
		{
			name:  "empty value and bare key",
			block: "emotes=;flags;id=1",
			want:  Tags{"emotes": "", "flags": "", "id": "1"},
		},
		{
			name:  "split at first equals only",
			block: "a=b=c",
			want:  Tags{"a": "b=c"},
		},
		{
			name:  "stray separators",
			block: ";;a=1;;=x;",
			want:  Tags{"a": "1"},
		},
		{
			name:  "escaped value",
			block: `system-msg=1\sraiders\sfrom\sX\shave\sjoined!;x=a\:b\\c\rd\ne`,
			want:  Tags{"system-msg": "1 raiders from X have joined!", "x": "a;b\\c\rd\ne"},
		},
		{
			name:  "trailing backslash and unknown escape",
			block: `a=x\;b=\q`,
			want:  Tags{"a": "x", "b": "q"},
		},
		{
			name:  "last occurrence wins",
			block: "a=1;a=2",
			want:  Tags{"a": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeTags(tt.block))
		})
	}
}

func TestTagsBool(t *testing.T) {
	tags := DecodeTags("subscriber=0;mod=1;first-msg=;returning-chatter=true")

	tests := []struct {
		key  string
		want bool
	}{
		{"subscriber", false},
		{"mod", true},
		{"first-msg", true},
		{"returning-chatter", true},
		{"vip", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, tags.Bool(tt.key))
		})
	}
}
