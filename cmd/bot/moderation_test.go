package main

import (
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownUser(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "UnknownUserCode",
			err: &discordgo.RESTError{
				Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownUser},
			},
			want: true,
		},
		{
			name: "UnknownBanCode",
			err: &discordgo.RESTError{
				Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownBan},
			},
			want: true,
		},
		{
			name: "UnknownMemberCode",
			err: &discordgo.RESTError{
				Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember},
			},
			want: true,
		},
		{
			name: "OtherCode",
			err: &discordgo.RESTError{
				Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
			},
			want: false,
		},
		{
			name: "BareNotFound",
			err: &discordgo.RESTError{
				Response: &http.Response{StatusCode: http.StatusNotFound},
			},
			want: true,
		},
		{
			name: "NotARestError",
			err:  http.ErrServerClosed,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isUnknownUser(tt.err))
		})
	}
}

func TestTopRolePosition(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "r1", Position: 1},
		{ID: "r2", Position: 5},
		{ID: "r3", Position: 3},
	}

	tests := []struct {
		name   string
		member *discordgo.Member
		want   int
	}{
		{
			name:   "NoRoles",
			member: &discordgo.Member{},
			want:   0,
		},
		{
			name:   "SingleRole",
			member: &discordgo.Member{Roles: []string{"r3"}},
			want:   3,
		},
		{
			name:   "HighestWins",
			member: &discordgo.Member{Roles: []string{"r1", "r2", "r3"}},
			want:   5,
		},
		{
			name:   "UnknownRoleIgnored",
			member: &discordgo.Member{Roles: []string{"missing"}},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, topRolePosition(roles, tt.member))
		})
	}
}

func TestResolveTextChannel(t *testing.T) {
	channels := []*discordgo.Channel{
		{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText},
		{ID: "2", Name: "announcements", Type: discordgo.ChannelTypeGuildText},
		{ID: "3", Name: "Voice", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "4", Name: "Support", Type: discordgo.ChannelTypeGuildCategory},
	}

	tests := []struct {
		name      string
		ref       string
		wantID    string
		wantMatch bool
	}{
		{
			name:      "ByMention",
			ref:       "<#2>",
			wantID:    "2",
			wantMatch: true,
		},
		{
			name:      "ByRawId",
			ref:       "1",
			wantID:    "1",
			wantMatch: true,
		},
		{
			name:      "ByNameCaseInsensitive",
			ref:       "General",
			wantID:    "1",
			wantMatch: true,
		},
		{
			name:      "VoiceChannelNotMatched",
			ref:       "Voice",
			wantMatch: false,
		},
		{
			name:      "NoMatch",
			ref:       "missing",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, available := resolveTextChannel(channels, tt.ref)

			// Only the text channels are offered as alternatives.
			require.Equal(t, []string{"general", "announcements"}, available)

			if !tt.wantMatch {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tt.wantID, got.ID)
		})
	}
}
