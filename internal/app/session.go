package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samvad-hq/recordkv/internal/config"
	"github.com/samvad-hq/recordkv/internal/logger"
	"github.com/samvad-hq/recordkv/internal/storage"
	"github.com/samvad-hq/recordkv/pkg/httpclient"
	"github.com/samvad-hq/recordkv/pkg/notify"
	"github.com/samvad-hq/recordkv/pkg/records"
)

// Session wires the record client with the key journal and change notifications
// and runs one CLI command at a time.
type Session struct {
	cfg     *config.Config
	client  *records.Client
	journal storage.Journal
	fanout  *notify.Fanout
	log     logger.Logger
	out     io.Writer
}

// NewSession builds a session runtime from config.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if out == nil {
		out = os.Stdout
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := records.New(records.Config{
		Host:  cfg.DBHost,
		Port:  cfg.DBPort,
		Debug: cfg.DBDebug,
		Routes: records.Routes{
			Create: cfg.RouteCreate,
			Fetch:  cfg.RouteFetch,
			Update: cfg.RouteUpdate,
			Delete: cfg.RouteDelete,
		},
	}, httpclient.NewRestyClient(cfg.RequestTimeout), log)
	if err != nil {
		return nil, fmt.Errorf("init record client: %w", err)
	}
	log.InfoObj("record client initialized", "client_config", map[string]any{
		"endpoint":        client.Endpoint(),
		"debug":           client.Debug(),
		"timeout_seconds": int(cfg.RequestTimeout.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	journal, err := storage.NewJournal(cfg.JournalType, cfg.JournalPath, storage.Options{
		KeyTTL:          cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"key_ttl_seconds":          int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	return &Session{
		cfg:     cfg,
		client:  client,
		journal: journal,
		fanout:  fanout,
		log:     log,
		out:     out,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Fanout, error) {
	if cfg.SinksFile == "" {
		return notify.NewFanout(nil), nil
	}

	sinkReg, err := notify.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}

	enabled := sinkReg.Enabled()
	sinks, err := notify.BuildAll(ctx, notify.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, sc := range enabled {
		summaries = append(summaries, map[string]string{"id": sc.ID, "type": sc.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return notify.NewFanout(sinks), nil
}

// Close releases the journal and sink clients.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if err := s.fanout.Close(); err != nil {
		s.log.ErrorObj("sink close failed", "error", err)
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.ErrorObj("journal close failed", "error", err)
		}
	}
}

// Create stores rec, remembers its key and announces the change.
func (s *Session) Create(ctx context.Context, rec records.Record) (string, error) {
	key, err := s.client.Create(ctx, rec)
	if err != nil {
		return "", err
	}
	if err := s.journal.Remember(key); err != nil {
		s.log.WarnObj("journal remember failed", "journal_error", map[string]any{"key": key, "error": err.Error()})
	}
	s.notify(ctx, notify.OpCreate, key, rec)
	return key, nil
}

// Get fetches the record stored under key.
func (s *Session) Get(ctx context.Context, key string) (records.Record, bool, error) {
	return s.client.Fetch(ctx, key)
}

// Update replaces the record stored under key and announces the change.
func (s *Session) Update(ctx context.Context, key string, rec records.Record) error {
	if err := s.client.Update(ctx, key, rec); err != nil {
		return err
	}
	s.notify(ctx, notify.OpUpdate, key, rec)
	return nil
}

// Delete removes key remotely, forgets it locally and announces the change.
func (s *Session) Delete(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, key); err != nil {
		return err
	}
	if err := s.journal.Forget(key); err != nil {
		s.log.WarnObj("journal forget failed", "journal_error", map[string]any{"key": key, "error": err.Error()})
	}
	s.notify(ctx, notify.OpDelete, key, nil)
	return nil
}

// Keys lists the keys remembered by the journal.
func (s *Session) Keys() ([]string, error) {
	return s.journal.Keys()
}

// notify never fails the mutation that triggered it.
func (s *Session) notify(ctx context.Context, op, key string, rec records.Record) {
	if s.fanout.Size() == 0 {
		return
	}
	delivered, err := s.fanout.Publish(ctx, notify.NewChangeEvent(op, s.client.Endpoint(), key, rec))
	if err != nil {
		s.log.WarnObj("change notification failed", "notify_error", map[string]any{
			"op":        op,
			"key":       key,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	s.log.DebugObj("change notification delivered", "notify_result", map[string]any{
		"op":        op,
		"key":       key,
		"delivered": delivered,
	})
}

func (s *Session) emit(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(s.out, string(line))
	return err
}
