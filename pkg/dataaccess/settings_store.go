package dataaccess

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Jacobbrewer1/meiple/pkg/custom"
	"github.com/Jacobbrewer1/meiple/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/meiple/pkg/entities"
	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const settingsStoreName = "settings_store"

type ISettingsStore interface {
	// Save serializes the full store to the settings file, overwriting prior
	// content.
	Save() error

	// Ticket gets the open ticket record for a user, if one exists.
	Ticket(userID string) (*entities.TicketRecord, bool)

	// BeginOpen reserves the right to open a ticket for a user. It returns an
	// AlreadyOpenError if the user already has an open ticket, or has an open
	// in flight. A successful reservation must be completed with OpenTicket or
	// released with AbortOpen.
	BeginOpen(userID string) error

	// AbortOpen releases a reservation made by BeginOpen without inserting a
	// record. The store is left unchanged.
	AbortOpen(userID string)

	// OpenTicket inserts the ticket record for a user and persists the store.
	// It returns an AlreadyOpenError if a record already exists.
	OpenTicket(userID, channelID, channelName string) error

	// CloseTicket removes and returns the ticket record for a user. It returns
	// nil if the user has no open ticket; the store is persisted only when a
	// record was removed.
	CloseTicket(userID string) (*entities.TicketRecord, error)

	// Reset clears all tickets and configuration, and persists.
	Reset() error

	// SetModMailConfig overwrites the mod-mail configuration and persists.
	// Ticket records are not altered.
	SetModMailConfig(channelID, roleID string) error

	// ModMailConfig gets the current mod-mail configuration.
	ModMailConfig() entities.ModMailConfig

	// Ping verifies that the settings file location is usable.
	Ping() error
}

// settingsStore is the file-backed settings store. All mutations happen under
// one mutex and are flushed to the settings file before they are reported as
// successful; platform calls never happen inside the lock.
type settingsStore struct {
	// mu guards settings and pendingOpens.
	mu sync.Mutex

	// l is the logger.
	l *slog.Logger

	// path is the location of the settings file.
	path string

	// settings is the in-memory state.
	settings *entities.Settings

	// pendingOpens tracks users whose ticket channel is currently being
	// created. It closes the window between the duplicate check and the record
	// insert while the channel-creation network call runs outside the lock.
	pendingOpens map[string]struct{}
}

// LoadSettingsStore loads the settings store from the given file. A missing or
// malformed file degrades to an empty store; this never fails.
func LoadSettingsStore(path string, logger *slog.Logger) ISettingsStore {
	l := logger.With(slog.String(logging.KeyStore, settingsStoreName))

	s := &settingsStore{
		l:            l,
		path:         path,
		settings:     entities.NewSettings(),
		pendingOpens: make(map[string]struct{}),
	}

	observe := startOp("load")
	defer observe()

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.Warn("Error reading settings file, starting empty", slog.String(logging.KeyError, err.Error()))
		}
		return s
	}

	settings, err := parseSettings(raw)
	if err != nil {
		l.Warn("Settings file is malformed, starting empty", slog.String(logging.KeyError, err.Error()))
		return s
	}

	s.settings = settings
	return s
}

// parseSettings decodes the settings file content. The tagged shape is tried
// first; a flat legacy file (reserved config keys mixed with per-user ticket
// tuples) is translated on the fly.
func parseSettings(raw []byte) (*entities.Settings, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}

	_, hasModMail := keys["mod_mail"]
	_, hasTickets := keys["tickets"]
	if hasModMail || hasTickets {
		settings := entities.NewSettings()
		if err := json.Unmarshal(raw, settings); err != nil {
			return nil, fmt.Errorf("error decoding settings: %w", err)
		}
		if settings.Tickets == nil {
			settings.Tickets = make(map[string]*entities.TicketRecord)
		}
		return settings, nil
	}

	return parseLegacySettings(keys)
}

// Reserved keys of the legacy flat settings format.
const (
	legacyKeyModMailChannel = "mod_mail_channel_id"
	legacyKeyRoleHandler    = "role_handler_id"
)

// parseLegacySettings translates the legacy flat format, where the two config
// keys and per-user ticket tuples share one namespace.
func parseLegacySettings(keys map[string]json.RawMessage) (*entities.Settings, error) {
	settings := entities.NewSettings()

	for key, value := range keys {
		switch key {
		case legacyKeyModMailChannel:
			id, err := decodeLegacyID(value)
			if err != nil {
				return nil, fmt.Errorf("error decoding mod mail channel: %w", err)
			}
			settings.ModMail.ChannelID = id
		case legacyKeyRoleHandler:
			id, err := decodeLegacyID(value)
			if err != nil {
				return nil, fmt.Errorf("error decoding role handler: %w", err)
			}
			settings.ModMail.RoleID = id
		default:
			// Any other key is a user ID mapped to a (channel ID, channel name)
			// tuple.
			var tuple []json.RawMessage
			if err := json.Unmarshal(value, &tuple); err != nil {
				return nil, fmt.Errorf("error decoding ticket for user %s: %w", key, err)
			}
			if len(tuple) != 2 {
				return nil, fmt.Errorf("unexpected ticket tuple length %d for user %s", len(tuple), key)
			}

			channelID, err := decodeLegacyID(tuple[0])
			if err != nil {
				return nil, fmt.Errorf("error decoding ticket channel for user %s: %w", key, err)
			}

			var channelName string
			if err := json.Unmarshal(tuple[1], &channelName); err != nil {
				return nil, fmt.Errorf("error decoding ticket name for user %s: %w", key, err)
			}

			settings.Tickets[key] = &entities.TicketRecord{
				ChannelID:   channelID,
				ChannelName: channelName,
			}
		}
	}

	return settings, nil
}

// decodeLegacyID decodes an identifier that the legacy format stored either as
// a JSON number or as a string.
func decodeLegacyID(raw json.RawMessage) (string, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return "", fmt.Errorf("identifier is neither a string nor a number: %w", err)
	}
	return asNumber.String(), nil
}

// startOp starts the prometheus metrics for a store operation. The returned
// function observes the duration.
func startOp(op string) func() {
	monitoring.StoreTotalRequests.WithLabelValues(settingsStoreName, op).Inc()
	t := prometheus.NewTimer(monitoring.StoreLatency.WithLabelValues(settingsStoreName, op))
	return func() { t.ObserveDuration() }
}

func (s *settingsStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked rewrites the settings file wholesale. The file is written to a
// temporary file in the same directory and renamed into place so that a crash
// mid-write never leaves a truncated settings file. Callers must hold mu.
func (s *settingsStore) saveLocked() error {
	observe := startOp("save")
	defer observe()

	raw, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temporary settings file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("error writing settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("error closing settings file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("error replacing settings file: %w", err)
	}
	return nil
}

func (s *settingsStore) Ticket(userID string) (*entities.TicketRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("get_ticket")
	defer observe()

	record, ok := s.settings.Tickets[userID]
	if !ok {
		return nil, false
	}

	// Hand out a copy so that callers cannot mutate the store outside the lock.
	clone := *record
	return &clone, true
}

func (s *settingsStore) BeginOpen(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("begin_open")
	defer observe()

	if record, ok := s.settings.Tickets[userID]; ok {
		clone := *record
		return &AlreadyOpenError{UserID: userID, Record: &clone}
	}
	if _, ok := s.pendingOpens[userID]; ok {
		return &AlreadyOpenError{UserID: userID}
	}

	s.pendingOpens[userID] = struct{}{}
	return nil
}

func (s *settingsStore) AbortOpen(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("abort_open")
	defer observe()

	delete(s.pendingOpens, userID)
}

func (s *settingsStore) OpenTicket(userID, channelID, channelName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("open_ticket")
	defer observe()

	if record, ok := s.settings.Tickets[userID]; ok {
		clone := *record
		return &AlreadyOpenError{UserID: userID, Record: &clone}
	}

	s.settings.Tickets[userID] = &entities.TicketRecord{
		ChannelID:   channelID,
		ChannelName: channelName,
		OpenedAt:    custom.Datetime(time.Now().UTC()),
	}
	delete(s.pendingOpens, userID)

	if err := s.saveLocked(); err != nil {
		// Roll the insert back; a mutation that could not be flushed must not
		// be reported as a success.
		delete(s.settings.Tickets, userID)
		return fmt.Errorf("error persisting ticket: %w", err)
	}
	return nil
}

func (s *settingsStore) CloseTicket(userID string) (*entities.TicketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("close_ticket")
	defer observe()

	record, ok := s.settings.Tickets[userID]
	if !ok {
		return nil, nil
	}

	delete(s.settings.Tickets, userID)

	if err := s.saveLocked(); err != nil {
		s.settings.Tickets[userID] = record
		return nil, fmt.Errorf("error persisting ticket removal: %w", err)
	}
	return record, nil
}

func (s *settingsStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("reset")
	defer observe()

	previous := s.settings
	s.settings = entities.NewSettings()

	if err := s.saveLocked(); err != nil {
		s.settings = previous
		return fmt.Errorf("error persisting reset: %w", err)
	}
	return nil
}

func (s *settingsStore) SetModMailConfig(channelID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("set_mod_mail_config")
	defer observe()

	previous := s.settings.ModMail
	s.settings.ModMail = entities.ModMailConfig{
		ChannelID: channelID,
		RoleID:    roleID,
	}

	if err := s.saveLocked(); err != nil {
		s.settings.ModMail = previous
		return fmt.Errorf("error persisting mod mail config: %w", err)
	}
	return nil
}

func (s *settingsStore) ModMailConfig() entities.ModMailConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	observe := startOp("get_mod_mail_config")
	defer observe()

	return s.settings.ModMail
}

func (s *settingsStore) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := json.Marshal(s.settings); err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("settings directory is not usable: %w", err)
	}
	return nil
}
