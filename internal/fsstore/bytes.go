package fsstore

import (
	"errors"
	"fmt"
	"os"
)

// ReadBytes reports ok=false without error when path does not exist.
func ReadBytes(path string) ([]byte, bool, error) {
	normalizedPath, err := normalizePath(path)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(normalizedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", normalizedPath, err)
	}
	return data, true, nil
}

func WriteBytesAtomic(path string, content []byte, opts FileOptions) error {
	normalizedPath, err := normalizePath(path)
	if err != nil {
		return err
	}
	return writeAtomic(normalizedPath, content, opts)
}
