package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/sathi/internal/matching/scoring"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MatchingConfig carries the ranking tunables read from matching.yml.
type MatchingConfig = scoring.Tunables

var errIncompleteMatchingConfig = errors.New("matching config is empty or incomplete")

func DefaultMatchingConfig() MatchingConfig {
	return scoring.DefaultTunables()
}

const (
	keyMaxDistance = "matching.max_effective_distance_km"
	keyMinScore    = "matching.min_match_score"
	keyDefaultTopN = "matching.default_top_n"
)

type MatchingConfigHolder struct {
	current atomic.Value // holds MatchingConfig
}

// NewMatchingConfigHolder reads matching.yml when present and keeps the
// result current while the file changes on disk.
func NewMatchingConfigHolder(log *zap.Logger) (*MatchingConfigHolder, error) {
	log = log.Named("config.matching")

	v := viper.New()
	v.SetConfigName("matching")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/sathi")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SATHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMatchingConfig()
	v.SetDefault(keyMaxDistance, defaults.MaxEffectiveDistanceKM)
	v.SetDefault(keyMinScore, defaults.MinMatchScore)
	v.SetDefault(keyDefaultTopN, defaults.DefaultTopN)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	cfg := readMatchingConfig(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	holder := NewStaticMatchingConfigHolder(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			if err := holder.reload(v); err != nil {
				log.Warn("matching config change ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			log.Info("matching config reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

// NewStaticMatchingConfigHolder returns a holder that never reloads.
func NewStaticMatchingConfigHolder(cfg MatchingConfig) *MatchingConfigHolder {
	holder := &MatchingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *MatchingConfigHolder) Get() MatchingConfig {
	return h.current.Load().(MatchingConfig)
}

func readMatchingConfig(v *viper.Viper) MatchingConfig {
	return MatchingConfig{
		MaxEffectiveDistanceKM: v.GetFloat64(keyMaxDistance),
		MinMatchScore:          v.GetFloat64(keyMinScore),
		DefaultTopN:            v.GetInt(keyDefaultTopN),
	}
}

// reload swaps in the file's tunables. Editors often truncate before
// writing, so a read that lacks any matching key keeps the previous value
// instead of falling back to defaults.
func (h *MatchingConfigHolder) reload(v *viper.Viper) error {
	for _, key := range []string{keyMaxDistance, keyMinScore, keyDefaultTopN} {
		if !v.InConfig(key) {
			return fmt.Errorf("%w: missing %s", errIncompleteMatchingConfig, key)
		}
	}
	updated := readMatchingConfig(v)
	if err := updated.Validate(); err != nil {
		return err
	}
	h.current.Store(updated)
	return nil
}
