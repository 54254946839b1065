package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Version is the running release, overridden at build time with -ldflags.
var Version = "0.4.0"

type Config struct {
	Library LibraryConfig
	UI      UIConfig
	Updates UpdatesConfig
	Log     LogConfig
}

type LibraryConfig struct {
	Path string
	// PassphraseEnv names the environment variable holding the library
	// passphrase. Empty means the TUI asks when the library is locked.
	PassphraseEnv string `mapstructure:"passphrase_env"`
}

type UIConfig struct {
	Locale     string
	DateFormat string `mapstructure:"date_format"`
}

type UpdatesConfig struct {
	Manifest string
}

type LogConfig struct {
	Path  string
	Level string
}

func baseDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storyshelf")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "storyshelf")
}

// Load reads configuration from file and env. Env var overrides use prefix STORYSHELF_.
// path may be empty to use the default search location.
func Load(path string) (Config, error) {
	v := viper.New()

	dir := baseDir()
	v.SetDefault("library.path", filepath.Join(dir, "library.json"))
	v.SetDefault("library.passphrase_env", "STORYSHELF_PASSPHRASE")
	v.SetDefault("ui.locale", os.Getenv("LANG"))
	v.SetDefault("ui.date_format", "2006-01-02 15:04")
	v.SetDefault("updates.manifest", "")
	v.SetDefault("log.path", filepath.Join(dir, "storyshelf.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("STORYSHELF_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STORYSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path must exist, the default location may not
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.UI.Locale = normalizeLocale(c.UI.Locale)
	return c, nil
}

// normalizeLocale turns POSIX locale values like "de_DE.UTF-8" into BCP 47.
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "", "C", "POSIX":
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}
