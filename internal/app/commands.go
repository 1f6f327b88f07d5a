package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/recordkv/pkg/records"
)

// ErrUsage is returned for unknown commands or wrong argument counts.
var ErrUsage = errors.New("usage: recordctl create <json> | get <key> | update <key> <json> | delete <key> | keys | demo")

// Run dispatches one CLI command.
func (s *Session) Run(ctx context.Context, args []string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("session is not initialized")
	}
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch {
	case cmd == "create" && len(rest) == 1:
		rec, err := parseRecord(rest[0])
		if err != nil {
			return err
		}
		key, err := s.Create(ctx, rec)
		if err != nil {
			return err
		}
		return s.emit(map[string]any{"key": key})

	case cmd == "get" && len(rest) == 1:
		rec, found, err := s.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		return s.emit(map[string]any{"key": rest[0], "found": found, "value": rec})

	case cmd == "update" && len(rest) == 2:
		rec, err := parseRecord(rest[1])
		if err != nil {
			return err
		}
		if err := s.Update(ctx, rest[0], rec); err != nil {
			return err
		}
		return s.emit(map[string]any{"key": rest[0], "updated": true})

	case cmd == "delete" && len(rest) == 1:
		if err := s.Delete(ctx, rest[0]); err != nil {
			return err
		}
		return s.emit(map[string]any{"key": rest[0], "deleted": true})

	case cmd == "keys" && len(rest) == 0:
		keys, err := s.Keys()
		if err != nil {
			return fmt.Errorf("list journal keys: %w", err)
		}
		if keys == nil {
			keys = []string{}
		}
		return s.emit(map[string]any{"keys": keys})

	case cmd == "demo" && len(rest) == 0:
		return s.demo(ctx)
	}
	return ErrUsage
}

// demo walks a record through its whole lifecycle and prints every step.
func (s *Session) demo(ctx context.Context) error {
	key, err := s.Create(ctx, records.Record{"name": "Velikiq", "surname": "Nepovtorimiq"})
	if err != nil {
		return fmt.Errorf("demo create: %w", err)
	}
	if err := s.emit(map[string]any{"step": "create", "key": key}); err != nil {
		return err
	}

	if err := s.demoGet(ctx, key); err != nil {
		return err
	}
	if err := s.Update(ctx, key, records.Record{"name": "Deyan"}); err != nil {
		return fmt.Errorf("demo update: %w", err)
	}
	if err := s.emit(map[string]any{"step": "update", "key": key}); err != nil {
		return err
	}
	if err := s.demoGet(ctx, key); err != nil {
		return err
	}
	if err := s.Delete(ctx, key); err != nil {
		return fmt.Errorf("demo delete: %w", err)
	}
	if err := s.emit(map[string]any{"step": "delete", "key": key}); err != nil {
		return err
	}
	return s.demoGet(ctx, key)
}

func (s *Session) demoGet(ctx context.Context, key string) error {
	rec, found, err := s.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("demo get: %w", err)
	}
	return s.emit(map[string]any{"step": "get", "key": key, "found": found, "value": rec})
}

func parseRecord(raw string) (records.Record, error) {
	rec, err := records.ParseRecord([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parse record json: %w", err)
	}
	return rec, nil
}
