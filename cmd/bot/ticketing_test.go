package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestTicketChannelName(t *testing.T) {
	tests := []struct {
		name     string
		username string
		now      time.Time
		want     string
	}{
		{
			name:     "Simple",
			username: "alice",
			now:      time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
			want:     "alice-03-09-ticket",
		},
		{
			name:     "DateRollsOverInTicketTimezone",
			username: "alice",
			// 19:00 UTC on the 9th is already the 10th in UTC+8.
			now:  time.Date(2024, 3, 9, 19, 0, 0, 0, time.UTC),
			want: "alice-03-10-ticket",
		},
		{
			name:     "ZeroPaddedDate",
			username: "bob",
			now:      time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
			want:     "bob-01-02-ticket",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ticketChannelName(tt.username, tt.now))
		})
	}
}

func TestTicketChannelName_Truncated(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := ticketChannelName(long, time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC))

	require.Len(t, got, 100)
	require.True(t, strings.HasSuffix(got, TicketNameSuffix))
}

func TestIsTicketChannel(t *testing.T) {
	tests := []struct {
		name        string
		channelName string
		want        bool
	}{
		{
			name:        "TicketChannel",
			channelName: "alice-03-09-ticket",
			want:        true,
		},
		{
			name:        "RegularChannel",
			channelName: "general",
			want:        false,
		},
		{
			name:        "SuffixOnly",
			channelName: "-ticket",
			want:        false,
		},
		{
			name:        "Empty",
			channelName: "",
			want:        false,
		},
		{
			name:        "SuffixInMiddle",
			channelName: "a-ticket-channel",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isTicketChannel(tt.channelName))
		})
	}
}

func TestIsUnknownChannel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "UnknownChannelCode",
			err: &discordgo.RESTError{
				Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
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
			require.Equal(t, tt.want, isUnknownChannel(tt.err))
		})
	}
}
