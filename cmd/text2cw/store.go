package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/quailyquaily/text2cw/internal/kv"
	"github.com/quailyquaily/text2cw/internal/statepaths"
)

// openStore opens the kv backend selected by store.backend.
func openStore(logger *slog.Logger) (kv.Store, error) {
	backend := strings.ToLower(strings.TrimSpace(viper.GetString("store.backend")))
	switch backend {
	case "", "badger":
		return kv.NewBadger(kv.BadgerOptions{Dir: statepaths.StoreDir(), Logger: logger})
	case "file":
		return kv.NewFile(statepaths.StoreDir())
	case "memory":
		logger.Warn("store_memory", "message", "sessions are lost on exit")
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store.backend: %s", backend)
	}
}
