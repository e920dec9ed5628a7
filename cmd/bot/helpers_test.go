package main

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestParseChannelRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "Mention",
			ref:  "<#123456>",
			want: "123456",
		},
		{
			name: "RawId",
			ref:  "123456",
			want: "123456",
		},
		{
			name: "Name",
			ref:  "general",
			want: "general",
		},
		{
			name: "RoleMentionLeftAlone",
			ref:  "<@&123456>",
			want: "<@&123456>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseChannelRef(tt.ref))
		})
	}
}

func TestParseRoleRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "Mention",
			ref:  "<@&789>",
			want: "789",
		},
		{
			name: "RawId",
			ref:  "789",
			want: "789",
		},
		{
			name: "ChannelMentionLeftAlone",
			ref:  "<#789>",
			want: "<#789>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseRoleRef(tt.ref))
		})
	}
}

func TestInteractionUser(t *testing.T) {
	guildUser := &discordgo.User{ID: "1"}
	dmUser := &discordgo.User{ID: "2"}

	tests := []struct {
		name string
		i    *discordgo.InteractionCreate
		want *discordgo.User
	}{
		{
			name: "GuildInvocation",
			i: &discordgo.InteractionCreate{
				Interaction: &discordgo.Interaction{
					Member: &discordgo.Member{User: guildUser},
				},
			},
			want: guildUser,
		},
		{
			name: "DirectMessageInvocation",
			i: &discordgo.InteractionCreate{
				Interaction: &discordgo.Interaction{
					User: dmUser,
				},
			},
			want: dmUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, interactionUser(tt.i))
		})
	}
}
