package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hokarena/reward/internal/reward"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "hok_reward.cfg.json"

const weightsKey = "reward.weights"

// RewardConfig holds the reward engine settings.
type RewardConfig struct {
	Weights   map[string]float64
	TimeScale float64
	LevelExp  []float64
	Strict    bool
	Terminal  reward.TerminalConfig
}

// Engine returns the engine configuration part.
func (c RewardConfig) Engine() reward.Config {
	return reward.Config{
		Weights:   c.Weights,
		TimeScale: c.TimeScale,
		LevelExp:  c.LevelExp,
	}
}

// LineupConfig holds the hero pool and evaluation schedule settings.
type LineupConfig struct {
	CampHeroes [][]int `json:"campHeroes" mapstructure:"campHeroes"`
	EvalFreq   int     `json:"evalFreq" mapstructure:"evalFreq"`
	Seed       int64   `json:"seed" mapstructure:"seed"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the in-memory sqlite backend settings.
type SQLiteConfig struct {
	DumpInterval time.Duration
	DumpPath     string
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	SQLite SQLiteConfig
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	BatchTimeout   time.Duration
	MetricInterval time.Duration
	Endpoint       string
	Insecure       bool
}

// InfluxConfig holds InfluxDB settings.
type InfluxConfig struct {
	Enabled          bool
	Host             string
	Port             string
	Protocol         string
	Token            string
	Org              string
	FrameSampleEvery int
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./hoklogs")

	for name, w := range reward.DefaultWeights() {
		viper.SetDefault(weightsKey+"."+name, w)
	}
	viper.SetDefault("reward.timeScale", reward.DefaultTimeScale)
	viper.SetDefault("reward.levelExp", reward.DefaultLevelExp)
	viper.SetDefault("reward.strict", false)
	viper.SetDefault("reward.terminal.bonus", reward.DefaultTerminalConfig().Bonus)
	viper.SetDefault("reward.terminal.horizon", reward.DefaultTerminalConfig().Horizon)

	viper.SetDefault("lineup.campHeroes", [][]int{{133}, {199}, {508}})
	viper.SetDefault("lineup.evalFreq", 10)
	viper.SetDefault("lineup.seed", 0)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./rewards")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "hok_reward")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "hok-metrics")
	viper.SetDefault("influx.frameSampleEvery", 100)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "hok-reward")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.interval", "10s")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetRewardConfig returns the reward engine settings. Weights merge the
// defaults with the file, key by key. Viper lower-cases the term names; the
// engine matches them case-insensitively.
func GetRewardConfig() RewardConfig {
	cfg := RewardConfig{
		Weights:   map[string]float64{},
		TimeScale: viper.GetFloat64("reward.timeScale"),
		Strict:    viper.GetBool("reward.strict"),
		Terminal: reward.TerminalConfig{
			Bonus:   viper.GetFloat64("reward.terminal.bonus"),
			Horizon: viper.GetFloat64("reward.terminal.horizon"),
		},
	}

	prefix := weightsKey + "."
	keys := viper.AllKeys()
	sort.Strings(keys)
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, prefix); ok {
			cfg.Weights[name] = viper.GetFloat64(k)
		}
	}

	if err := viper.UnmarshalKey("reward.levelExp", &cfg.LevelExp); err != nil || len(cfg.LevelExp) == 0 {
		cfg.LevelExp = reward.DefaultLevelExp
	}
	return cfg
}

// GetLineupConfig returns the hero pool and evaluation schedule.
func GetLineupConfig() LineupConfig {
	cfg := LineupConfig{
		EvalFreq: viper.GetInt("lineup.evalFreq"),
		Seed:     viper.GetInt64("lineup.seed"),
	}
	if err := viper.UnmarshalKey("lineup.campHeroes", &cfg.CampHeroes); err != nil {
		cfg.CampHeroes = nil
	}
	return cfg
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:          viper.GetBool("influx.enabled"),
		Host:             viper.GetString("influx.host"),
		Port:             viper.GetString("influx.port"),
		Protocol:         viper.GetString("influx.protocol"),
		Token:            viper.GetString("influx.token"),
		Org:              viper.GetString("influx.org"),
		FrameSampleEvery: viper.GetInt("influx.frameSampleEvery"),
	}
}
