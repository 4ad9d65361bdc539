package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config describes one evaluation run of the cmd tools.
type Config struct {
	Code   CodeConfig   `mapstructure:"code"`
	Turbo  TurboConfig  `mapstructure:"turbo"`
	Sweep  SweepConfig  `mapstructure:"sweep"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// CodeConfig is the convolutional code of viterbi_eval.
type CodeConfig struct {
	Generator [][]int `mapstructure:"generator"`
	Feedback  []int   `mapstructure:"feedback"`
	Reduction int     `mapstructure:"reduction"`
	Decoder   string  `mapstructure:"decoder"` // viterbi or siso
}

// TurboConfig is the turbo code of turbo_eval. Both constituent codes share
// Generator and Feedback.
type TurboConfig struct {
	Generator      [][]int `mapstructure:"generator"`
	Feedback       []int   `mapstructure:"feedback"`
	Interleaver    string  `mapstructure:"interleaver"` // identity, reverse, random, qpp
	PermFile       string  `mapstructure:"perm_file"`
	Seed           int64   `mapstructure:"seed"`
	Iterations     int     `mapstructure:"iterations"`
	ExtrinsicScale float64 `mapstructure:"extrinsic_scale"`
}

// SweepConfig is the Eb/N0 sweep.
type SweepConfig struct {
	EbN0      []float64 `mapstructure:"ebn0_db"`
	Blocks    int       `mapstructure:"blocks"`
	BlockSize int       `mapstructure:"block_size"`
	Seed      int64     `mapstructure:"seed"`
	Workers   int       `mapstructure:"workers"`
}

// OutputConfig names the report directory and optional metrics file.
type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Metrics string `mapstructure:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configFile, or convfec.yaml from the usual places when it is
// empty, on top of the defaults. CONVFEC_* environment variables override
// file values, e.g. CONVFEC_SWEEP_BLOCKS.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("convfec")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("CONVFEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// K=3 (7,5) code
	v.SetDefault("code.generator", [][]int{{1, 1, 1}, {1, 0, 1}})
	v.SetDefault("code.feedback", []int{})
	v.SetDefault("code.reduction", 1)
	v.SetDefault("code.decoder", "viterbi")

	// K=4 recursive constituent code, 13/15 octal
	v.SetDefault("turbo.generator", [][]int{{1, 1, 0, 1}})
	v.SetDefault("turbo.feedback", []int{0, 0, 1, 1})
	v.SetDefault("turbo.interleaver", "qpp")
	v.SetDefault("turbo.perm_file", "")
	v.SetDefault("turbo.seed", 1)
	v.SetDefault("turbo.iterations", 6)
	v.SetDefault("turbo.extrinsic_scale", 11.0/16.0)

	v.SetDefault("sweep.ebn0_db", []float64{0, 1, 2, 3})
	v.SetDefault("sweep.blocks", 200)
	v.SetDefault("sweep.block_size", 1024)
	v.SetDefault("sweep.seed", 1)
	v.SetDefault("sweep.workers", 0)

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.metrics", "")

	v.SetDefault("log.level", "INFO")
}
