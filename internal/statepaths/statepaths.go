package statepaths

import (
	"github.com/quailyquaily/text2cw/internal/pathutil"
	"github.com/spf13/viper"
)

func FileStateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("file_state_dir"))
}

// StoreDir holds the session database.
func StoreDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("store.dir"),
		"sessions",
	)
}

// FileCacheDir is the render work dir.
func FileCacheDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("file_cache_dir"),
		"cache",
	)
}
