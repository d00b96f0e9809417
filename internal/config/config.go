package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration for the live watch command, merged from
// flags, environment (WATCHER_ prefix), and an optional config file.
type Config struct {
	TelegramToken string
	Chains        map[string]string // chain name -> rpc url
	ExplorerKeys  map[string]string // chain name -> explorer api key
	PatternsFile  string
	JournalPath   string
	PGDSN         string
	ListenAddr    string
	VerifyDelay   time.Duration
	LogLevel      string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("journal", "./data/discoveries.jsonl")
		v.SetDefault("listen", ":9090")
		v.SetDefault("verify-delay", 20*time.Second)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TelegramToken: v.GetString("telegram-token"),
		Chains:        getStringMap(v, "chains"),
		ExplorerKeys:  getStringMap(v, "explorer-keys"),
		PatternsFile:  v.GetString("patterns"),
		JournalPath:   v.GetString("journal"),
		PGDSN:         v.GetString("pg-dsn"),
		ListenAddr:    v.GetString("listen"),
		VerifyDelay:   v.GetDuration("verify-delay"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("WATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

// getStringMap reads a key that may arrive as a config-file map or as a
// flag/env string of comma-separated name=value pairs.
func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
