package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	ConfigDataPath   = "data-path"
	ConfigMETFile    = "met-file"
	ConfigDebug      = "debug"
	ConfigNatsURL    = "nats-url"
	ConfigDBPath     = "db-path"
	ConfigCPUProfile = "cpu-profile"
	ConfigMemProfile = "mem-profile"

	ConfigAnalyseMove   = "analysis-moves"
	ConfigAnalyseCube   = "analysis-cube"
	ConfigAnalyseDice   = "analysis-luck"
	ConfigAnalysisLimit = "analysis-limit"

	ConfigSkillVeryBad  = "analysis-threshold-verybad"
	ConfigSkillBad      = "analysis-threshold-bad"
	ConfigSkillDoubtful = "analysis-threshold-doubtful"

	ConfigLuckVeryGood = "analysis-threshold-verylucky"
	ConfigLuckGood     = "analysis-threshold-lucky"
	ConfigLuckBad      = "analysis-threshold-unlucky"
	ConfigLuckVeryBad  = "analysis-threshold-veryunlucky"

	ConfigChequerPlies      = "analysis-chequer-plies"
	ConfigCubePlies         = "analysis-cube-plies"
	ConfigEvalCubeful       = "analysis-cubeful"
	ConfigEvalNoise         = "analysis-noise"
	ConfigEvalDeterministic = "analysis-deterministic"

	ConfigOutputMWC         = "output-mwc"
	ConfigEvalCacheFraction = "eval-cache-fraction"
	ConfigWorkerSubject     = "worker-subject"
	ConfigWorkerQueue       = "worker-queue"
	ConfigWorkerStore       = "worker-store"
)

// Config holds every setting; it is a thin wrapper around viper so that
// callers can use cfg.GetString(config.ConfigX) directly.
type Config struct {
	viper.Viper
}

var sensitive = map[string]bool{
	ConfigNatsURL: true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDataPath, "./data")
	v.SetDefault(ConfigMETFile, "")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	v.SetDefault(ConfigDBPath, "./data/bgstats.db")

	v.SetDefault(ConfigAnalyseMove, true)
	v.SetDefault(ConfigAnalyseCube, true)
	v.SetDefault(ConfigAnalyseDice, true)
	v.SetDefault(ConfigAnalysisLimit, 20)

	v.SetDefault(ConfigSkillVeryBad, 0.16)
	v.SetDefault(ConfigSkillBad, 0.08)
	v.SetDefault(ConfigSkillDoubtful, 0.04)

	v.SetDefault(ConfigLuckVeryGood, 0.6)
	v.SetDefault(ConfigLuckGood, 0.3)
	v.SetDefault(ConfigLuckBad, 0.3)
	v.SetDefault(ConfigLuckVeryBad, 0.6)

	v.SetDefault(ConfigChequerPlies, 0)
	v.SetDefault(ConfigCubePlies, 0)
	v.SetDefault(ConfigEvalCubeful, true)
	v.SetDefault(ConfigEvalNoise, 0.0)
	v.SetDefault(ConfigEvalDeterministic, true)

	v.SetDefault(ConfigOutputMWC, false)
	v.SetDefault(ConfigEvalCacheFraction, 0.01)
	v.SetDefault(ConfigWorkerSubject, "bgstats.analyze")
	v.SetDefault(ConfigWorkerQueue, "bgstats-workers")
	v.SetDefault(ConfigWorkerStore, false)
}

// DefaultConfig returns a config populated only with defaults. It does not
// read the environment or any config file.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	setDefaults(&c.Viper)
	return c
}

// Load reads settings in increasing order of precedence: defaults, an
// optional config.yaml, BGSTATS_* environment variables, then
// --key=value arguments.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	setDefaults(&c.Viper)

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	c.AddConfigPath("$HOME/.bgstats")
	c.AddConfigPath(".")
	if err := c.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.SetEnvPrefix("bgstats")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		kv := strings.SplitN(strings.TrimPrefix(arg, "--"), "=", 2)
		if len(kv) == 1 {
			// bare flags are booleans
			c.Set(kv[0], true)
			continue
		}
		c.Set(kv[0], kv[1])
	}
	return nil
}

// SanitizedSettings returns all settings with secrets masked, suitable
// for logging.
func (c *Config) SanitizedSettings() map[string]any {
	out := c.AllSettings()
	for k := range out {
		if sensitive[k] && c.GetString(k) != "" {
			out[k] = "*****"
		}
	}
	return out
}

// AdjustRelativePaths makes data paths absolute with respect to the
// executable's directory, unless they exist relative to the working dir.
func (c *Config) AdjustRelativePaths(basePath string) {
	for _, key := range []string{ConfigDataPath, ConfigMETFile, ConfigDBPath} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			continue
		}
		c.Set(key, filepath.Join(basePath, p))
	}
}
