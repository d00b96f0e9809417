package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BackfillConfig holds configuration for one historical scan of a single
// chain.
type BackfillConfig struct {
	Chain             string
	RPCURL            string
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	JournalPath       string
	PGDSN             string
	LogLevel          string
}

// LoadBackfill merges config file, environment variables, and flags into
// BackfillConfig.
func LoadBackfill(cfgFile string, flags *pflag.FlagSet) (BackfillConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("chain", "eth")
		v.SetDefault("batch-size", uint64(2000))
		v.SetDefault("checkpoint", "./data/checkpoint.json")
		v.SetDefault("checkpoint-enabled", true)
		v.SetDefault("max-retries", 5)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("journal", "./data/discoveries.jsonl")
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return BackfillConfig{}, err
	}

	cfg := BackfillConfig{
		Chain:             v.GetString("chain"),
		RPCURL:            v.GetString("rpc"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		BatchSize:         v.GetUint64("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		JournalPath:       v.GetString("journal"),
		PGDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
