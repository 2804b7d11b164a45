package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quailyquaily/text2cw/internal/fsstore"
)

const fileValueExt = ".bin"

// File stores every key as one file under Root, segments mapped to
// directories. Writes are atomic renames guarded by an flock so that several
// processes (bot and migrate command) can share a directory.
type File struct {
	root     string
	lockPath string
}

func NewFile(root string) (*File, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("kv: file store root is required")
	}
	if err := fsstore.EnsureDir(root, 0); err != nil {
		return nil, err
	}
	lockPath, err := fsstore.BuildLockPath(filepath.Join(root, ".fslocks"), "kv.write")
	if err != nil {
		return nil, err
	}
	return &File{root: root, lockPath: lockPath}, nil
}

func (f *File) path(key Key) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(key)+1)
	parts = append(parts, f.root)
	for _, seg := range key {
		if seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) || strings.HasPrefix(seg, ".") {
			return "", fmt.Errorf("%w: key segment %q", fsstore.ErrInvalidPath, seg)
		}
		parts = append(parts, seg)
	}
	parts[len(parts)-1] += fileValueExt
	return filepath.Join(parts...), nil
}

func (f *File) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, ok, err := fsstore.ReadBytes(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (f *File) Set(ctx context.Context, key Key, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	return fsstore.WithLock(ctx, f.lockPath, func() error {
		return fsstore.WriteBytesAtomic(p, value, fsstore.FileOptions{})
	})
}

func (f *File) Delete(ctx context.Context, key Key) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	return fsstore.WithLock(ctx, f.lockPath, func() error {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("kv delete %s: %w", key, err)
		}
		return nil
	})
}

func (f *File) List(ctx context.Context, prefix Key) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		base := f.root
		if len(prefix) > 0 {
			if err := validateKey(prefix); err != nil {
				yield(Entry{}, err)
				return
			}
			base = filepath.Join(append([]string{f.root}, prefix...)...)
		}
		var keys []Key
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if path != base && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(name, fileValueExt) || strings.HasPrefix(name, ".") {
				return nil
			}
			rel, err := filepath.Rel(f.root, strings.TrimSuffix(path, fileValueExt))
			if err != nil {
				return err
			}
			keys = append(keys, Key(strings.Split(filepath.ToSlash(rel), "/")))
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
			return
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			data, err := f.Get(ctx, k)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil && ctx.Err() != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(Entry{Key: k, Value: data}, err) {
				return
			}
		}
	}
}

func (f *File) Close() error { return nil }

func sprintfTrim(format string, args ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
