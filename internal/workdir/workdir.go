// Package workdir manages the private directory where render artifacts live
// between the renderer run and their delivery.
package workdir

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// Limits bound what Prune keeps. A zero field is not enforced.
type Limits struct {
	MaxAge        time.Duration
	MaxFiles      int
	MaxTotalBytes int64
}

type artifact struct {
	path    string
	modTime time.Time
	size    int64
}

// Ensure creates dir with 0700 perms and refuses a dir that is a symlink or
// owned by another user.
func Ensure(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", fmt.Errorf("empty work dir")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", err
	}

	fi, err := os.Lstat(abs)
	if err != nil {
		return "", err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("refusing symlink work dir: %s", abs)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("work dir is not a directory: %s", abs)
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return "", fmt.Errorf("unsupported stat for: %s", abs)
	}
	if uid := uint32(os.Getuid()); st.Uid != uid {
		return "", fmt.Errorf("work dir not owned by current user (uid=%d, owner=%d): %s", uid, st.Uid, abs)
	}
	if perm := fi.Mode().Perm(); perm != 0o700 {
		if err := os.Chmod(abs, 0o700); err != nil {
			return "", fmt.Errorf("work dir has insecure perms (%#o) and chmod failed: %w", perm, err)
		}
	}
	return abs, nil
}

// Prune removes artifacts older than MaxAge, then the oldest ones until
// MaxFiles and MaxTotalBytes hold. It returns how many files were removed.
func Prune(dir string, limits Limits) (int, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return 0, fmt.Errorf("empty work dir")
	}
	if limits.MaxAge <= 0 && limits.MaxFiles <= 0 && limits.MaxTotalBytes <= 0 {
		return 0, nil
	}
	now := time.Now()
	removed := 0

	var kept []artifact
	total := int64(0)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if limits.MaxAge > 0 && now.Sub(info.ModTime()) > limits.MaxAge {
			if os.Remove(path) == nil {
				removed++
			}
			return nil
		}
		kept = append(kept, artifact{path: path, modTime: info.ModTime(), size: info.Size()})
		total += info.Size()
		return nil
	})
	if walkErr != nil && !os.IsNotExist(walkErr) {
		return removed, walkErr
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].modTime.Before(kept[j].modTime) })
	over := func() bool {
		return (limits.MaxFiles > 0 && len(kept) > limits.MaxFiles) ||
			(limits.MaxTotalBytes > 0 && total > limits.MaxTotalBytes)
	}
	for over() && len(kept) > 0 {
		old := kept[0]
		kept = kept[1:]
		total -= old.size
		if os.Remove(old.path) == nil {
			removed++
		}
	}
	return removed, nil
}
