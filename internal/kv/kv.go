// Package kv is a small key-value store with hierarchical keys.
//
// Keys are string segments (e.g. Key{"session", "12345"}) joined with ':' when
// encoded. The package ships a BadgerDB backend for production, a file backend
// built on fsstore and an in-memory backend for tests.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNotFound is returned by Get when a key does not exist.
var ErrNotFound = errors.New("kv: not found")

// Separator joins key segments in the encoded form.
const Separator = ':'

// Key is a hierarchical path. Segments must not contain Separator.
type Key []string

func (k Key) String() string {
	return strings.Join(k, string(Separator))
}

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface shared by every backend.
type Store interface {
	// Get returns ErrNotFound if key is not present.
	Get(ctx context.Context, key Key) ([]byte, error)
	// Set overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key Key) error
	// List yields entries under prefix in lexicographic key order.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]
	Close() error
}

func validateKey(k Key) error {
	if len(k) == 0 {
		return fmt.Errorf("kv: empty key")
	}
	for _, seg := range k {
		if seg == "" {
			return fmt.Errorf("kv: empty segment in %q", k.String())
		}
		if strings.ContainsRune(seg, Separator) {
			return fmt.Errorf("kv: segment %q contains separator", seg)
		}
	}
	return nil
}

func encode(k Key) []byte {
	return []byte(k.String())
}

func decode(b []byte) Key {
	return Key(strings.Split(string(b), string(Separator)))
}

// prefixBytes returns the encoded prefix with a trailing separator so that
// "a:b" does not match "a:bc". An empty prefix matches everything.
func prefixBytes(prefix Key) []byte {
	if len(prefix) == 0 {
		return nil
	}
	return append(encode(prefix), Separator)
}
