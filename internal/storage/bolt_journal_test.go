package storage

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func TestBoltJournalRemembersAndForgetsKeys(t *testing.T) {
	j, err := NewJournal("bbolt", filepath.Join(t.TempDir(), "nested", "keys.db"), Options{})
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	defer j.Close()

	for _, k := range []string{"b", "a", "c"} {
		if err := j.Remember(k); err != nil {
			t.Fatalf("Remember(%s): %v", k, err)
		}
	}
	if err := j.Forget("c"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if err := j.Forget("missing"); err != nil {
		t.Fatalf("Forget unknown key: %v", err)
	}

	keys, err := j.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
}

func TestBoltJournalExpiresKeys(t *testing.T) {
	raw, err := openBolt(filepath.Join(t.TempDir(), "keys.db"), Options{
		KeyTTL:          1 * time.Second,
		CleanupInterval: 1 * time.Second,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	j := raw.(*boltJournal)
	defer j.Close()

	if err := j.Remember("k1"); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	j.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	keys, err := j.Keys()
	if err != nil {
		t.Fatalf("Keys after expiry: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected key to expire, got %v", keys)
	}
	if n, err := j.count(); err != nil || n != 0 {
		t.Fatalf("expected expired key purged, n=%d err=%v", n, err)
	}
}

func TestNewJournalVariants(t *testing.T) {
	j, err := NewJournal("none", "", Options{})
	if err != nil {
		t.Fatalf("NewJournal none: %v", err)
	}
	if err := j.Remember("x"); err != nil {
		t.Fatalf("noop Remember: %v", err)
	}
	if keys, _ := j.Keys(); len(keys) != 0 {
		t.Fatalf("noop journal should list nothing, got %v", keys)
	}

	if _, err := NewJournal("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewJournal("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func (b *boltJournal) count() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(keyBucket)).Stats().KeyN
		return nil
	})
	return n, err
}
