package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage keeps a local journal of record keys issued through the CLI.

// Journal remembers keys the remote database handed out.
type Journal interface {
	Close() error
	Remember(key string) error
	Forget(key string) error
	Keys() ([]string, error)
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	KeyTTL          time.Duration
	CleanupInterval time.Duration
}

const (
	defaultKeyTTL          = 7 * 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewJournal creates the configured journal backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.KeyTTL <= 0 {
		opts.KeyTTL = defaultKeyTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error            { return nil }
func (noopJournal) Remember(string) error   { return nil }
func (noopJournal) Forget(string) error     { return nil }
func (noopJournal) Keys() ([]string, error) { return nil, nil }
