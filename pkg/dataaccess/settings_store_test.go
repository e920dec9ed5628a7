package dataaccess

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) ISettingsStore {
	t.Helper()
	return LoadSettingsStore(filepath.Join(t.TempDir(), "settings.json"), slog.Default())
}

func TestLoadSettingsStore_MissingFile(t *testing.T) {
	s := LoadSettingsStore(filepath.Join(t.TempDir(), "does-not-exist.json"), slog.Default())

	require.False(t, s.ModMailConfig().Configured())
	_, ok := s.Ticket("123")
	require.False(t, ok)
}

func TestLoadSettingsStore_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Truncated",
			content: `{"mod_mail": {"channel_id": "1`,
		},
		{
			name:    "NotJson",
			content: "not json at all",
		},
		{
			name:    "WrongShape",
			content: `[1, 2, 3]`,
		},
		{
			name:    "Empty",
			content: "",
		},
		{
			name:    "BadLegacyTuple",
			content: `{"100": [1, 2, 3]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			s := LoadSettingsStore(path, slog.Default())

			require.False(t, s.ModMailConfig().Configured())
			_, ok := s.Ticket("100")
			require.False(t, ok)
		})
	}
}

func TestLoadSettingsStore_LegacyFlatFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	legacy := `{
		"mod_mail_channel_id": 100,
		"role_handler_id": "200",
		"31337": [7, "alice-01-02-ticket"],
		"31338": ["8", "bob-01-02-ticket"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	s := LoadSettingsStore(path, slog.Default())

	cfg := s.ModMailConfig()
	require.Equal(t, "100", cfg.ChannelID)
	require.Equal(t, "200", cfg.RoleID)

	alice, ok := s.Ticket("31337")
	require.True(t, ok)
	require.Equal(t, "7", alice.ChannelID)
	require.Equal(t, "alice-01-02-ticket", alice.ChannelName)

	bob, ok := s.Ticket("31338")
	require.True(t, ok)
	require.Equal(t, "8", bob.ChannelID)
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := LoadSettingsStore(path, slog.Default())

	require.NoError(t, s.SetModMailConfig("100", "200"))

	require.NoError(t, s.BeginOpen("u1"))
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))
	require.NoError(t, s.BeginOpen("u2"))
	require.NoError(t, s.OpenTicket("u2", "8", "bob-01-02-ticket"))

	// A fresh load from the same file reproduces an equivalent store.
	reloaded := LoadSettingsStore(path, slog.Default())

	cfg := reloaded.ModMailConfig()
	require.Equal(t, "100", cfg.ChannelID)
	require.Equal(t, "200", cfg.RoleID)

	u1, ok := reloaded.Ticket("u1")
	require.True(t, ok)
	require.Equal(t, "7", u1.ChannelID)
	require.Equal(t, "alice-01-02-ticket", u1.ChannelName)

	u2, ok := reloaded.Ticket("u2")
	require.True(t, ok)
	require.Equal(t, "8", u2.ChannelID)
}

func TestSettingsStore_AtMostOneTicket(t *testing.T) {
	s := newTestStore(t)

	const attempts = 32

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for n := 0; n < attempts; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = s.BeginOpen("u1")
		}(n)
	}
	wg.Wait()

	// Exactly one reservation wins; everyone else conflicts.
	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		alreadyOpen := new(AlreadyOpenError)
		require.True(t, errors.As(err, &alreadyOpen))
	}
	require.Equal(t, 1, wins)

	// The winner completes; the record exists exactly once.
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))
	record, ok := s.Ticket("u1")
	require.True(t, ok)
	require.Equal(t, "7", record.ChannelID)

	// A later open conflicts with the cached name attached.
	err := s.BeginOpen("u1")
	alreadyOpen := new(AlreadyOpenError)
	require.True(t, errors.As(err, &alreadyOpen))
	require.NotNil(t, alreadyOpen.Record)
	require.Equal(t, "alice-01-02-ticket", alreadyOpen.Record.ChannelName)
}

func TestSettingsStore_FailClosedCreation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := LoadSettingsStore(path, slog.Default())
	require.NoError(t, s.SetModMailConfig("100", ""))

	require.NoError(t, s.BeginOpen("u1"))

	// Channel creation failed; the reservation is released and the store is
	// unchanged.
	s.AbortOpen("u1")

	_, ok := s.Ticket("u1")
	require.False(t, ok)

	// The file on disk has no ticket either.
	reloaded := LoadSettingsStore(path, slog.Default())
	_, ok = reloaded.Ticket("u1")
	require.False(t, ok)

	// The user can try again.
	require.NoError(t, s.BeginOpen("u1"))
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))
}

func TestSettingsStore_CloseTicket(t *testing.T) {
	s := newTestStore(t)

	// Closing with no record signals "no record".
	record, err := s.CloseTicket("u1")
	require.NoError(t, err)
	require.Nil(t, record)

	require.NoError(t, s.BeginOpen("u1"))
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))

	// Closing with a record removes and returns it.
	record, err = s.CloseTicket("u1")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "alice-01-02-ticket", record.ChannelName)

	_, ok := s.Ticket("u1")
	require.False(t, ok)
}

func TestSettingsStore_ResetIdempotence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := LoadSettingsStore(path, slog.Default())

	// Reset on an empty store is fine.
	require.NoError(t, s.Reset())

	require.NoError(t, s.SetModMailConfig("100", "200"))
	require.NoError(t, s.BeginOpen("u1"))
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))

	// Reset on a populated store clears everything, twice in a row is the same
	// as once.
	require.NoError(t, s.Reset())
	require.NoError(t, s.Reset())

	require.False(t, s.ModMailConfig().Configured())
	_, ok := s.Ticket("u1")
	require.False(t, ok)

	reloaded := LoadSettingsStore(path, slog.Default())
	require.False(t, reloaded.ModMailConfig().Configured())
	_, ok = reloaded.Ticket("u1")
	require.False(t, ok)
}

func TestSettingsStore_ConfigIndependence(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.BeginOpen("u1"))
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))

	// Config changes never alter ticket records.
	require.NoError(t, s.SetModMailConfig("100", "200"))
	require.NoError(t, s.SetModMailConfig("300", ""))

	record, ok := s.Ticket("u1")
	require.True(t, ok)
	require.Equal(t, "7", record.ChannelID)

	// Ticket changes never alter config.
	_, err := s.CloseTicket("u1")
	require.NoError(t, err)
	require.NoError(t, s.BeginOpen("u2"))
	require.NoError(t, s.OpenTicket("u2", "9", "bob-01-02-ticket"))

	cfg := s.ModMailConfig()
	require.Equal(t, "300", cfg.ChannelID)
	require.Empty(t, cfg.RoleID)
}

func TestSettingsStore_TicketReturnsCopy(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.BeginOpen("u1"))
	require.NoError(t, s.OpenTicket("u1", "7", "alice-01-02-ticket"))

	record, ok := s.Ticket("u1")
	require.True(t, ok)
	record.ChannelName = "mutated"

	fresh, ok := s.Ticket("u1")
	require.True(t, ok)
	require.Equal(t, "alice-01-02-ticket", fresh.ChannelName)
}

func TestSettingsStore_EndToEndScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := LoadSettingsStore(path, slog.Default())

	// Store starts empty.
	require.False(t, s.ModMailConfig().Configured())

	// Mod mail is configured.
	require.NoError(t, s.SetModMailConfig("100", ""))

	// First ticket from U1 succeeds.
	require.NoError(t, s.BeginOpen("U1"))
	require.NoError(t, s.OpenTicket("U1", "7", "u1-01-02-ticket"))

	record, ok := s.Ticket("U1")
	require.True(t, ok)
	require.Equal(t, "7", record.ChannelID)
	require.Equal(t, "100", s.ModMailConfig().ChannelID)

	// Second ticket from U1 fails with the conflict, store unchanged.
	err := s.BeginOpen("U1")
	alreadyOpen := new(AlreadyOpenError)
	require.True(t, errors.As(err, &alreadyOpen))
	require.Equal(t, "u1-01-02-ticket", alreadyOpen.Record.ChannelName)

	// Close from U1 reverts the store, config intact.
	closed, err := s.CloseTicket("U1")
	require.NoError(t, err)
	require.Equal(t, "u1-01-02-ticket", closed.ChannelName)

	_, ok = s.Ticket("U1")
	require.False(t, ok)
	require.Equal(t, "100", s.ModMailConfig().ChannelID)
}

func TestSettingsStore_SaveFailureSurfaces(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	s := LoadSettingsStore(path, slog.Default())

	require.NoError(t, s.BeginOpen("u1"))

	// Make the settings directory unwritable so the flush fails.
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	err := s.OpenTicket("u1", "7", "alice-01-02-ticket")
	require.Error(t, err)

	// The failed mutation was rolled back.
	require.NoError(t, os.Chmod(dir, 0o700))
	_, ok := s.Ticket("u1")
	require.False(t, ok)
}
