package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/quailyquaily/text2cw/internal/feed"
	"github.com/quailyquaily/text2cw/internal/render"
)

func initViperDefaults() {
	// Global
	viper.SetDefault("file_state_dir", "~/.text2cw")
	viper.SetDefault("file_cache_dir", "cache")
	viper.SetDefault("file_cache.max_age", 24*time.Hour)
	viper.SetDefault("file_cache.max_files", 500)
	viper.SetDefault("file_cache.max_total_bytes", int64(256*1024*1024))
	viper.SetDefault("file_cache.prune_interval", time.Hour)

	// Session store
	viper.SetDefault("store.backend", "badger")
	viper.SetDefault("store.dir", "sessions")

	// Renderer
	viper.SetDefault("render.command", render.DefaultCommand)
	viper.SetDefault("render.author", "text2cw")

	// Content
	viper.SetDefault("dictionary.path", "it.txt")
	viper.SetDefault("qso.corpus", "")
	viper.SetDefault("feed.timeout", feed.DefaultTimeout)
	viper.SetDefault("feed.default", "")
	viper.SetDefault("feeds", map[string]string{})

	// Telegram
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.max_concurrency", 3)
	viper.SetDefault("telegram.queue_size", 4)
	viper.SetDefault("telegram.allowed_user_ids", []string{})
}
