package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration
func validate(cfg *Config) error {
	if len(cfg.Code.Generator) == 0 {
		return fmt.Errorf("code.generator must have at least one row")
	}
	if cfg.Code.Reduction < 1 {
		return fmt.Errorf("code.reduction must be positive")
	}
	switch strings.ToLower(cfg.Code.Decoder) {
	case "viterbi", "siso":
	default:
		return fmt.Errorf("code.decoder: invalid decoder %s (must be viterbi or siso)", cfg.Code.Decoder)
	}

	if len(cfg.Turbo.Generator) != 1 {
		return fmt.Errorf("turbo.generator must have exactly one row")
	}
	if cfg.Turbo.PermFile == "" {
		switch strings.ToLower(cfg.Turbo.Interleaver) {
		case "identity", "reverse", "random", "qpp":
		default:
			return fmt.Errorf("turbo.interleaver: invalid mode %s", cfg.Turbo.Interleaver)
		}
	}
	if cfg.Turbo.Iterations <= 0 {
		return fmt.Errorf("turbo.iterations must be positive")
	}
	if cfg.Turbo.ExtrinsicScale <= 0 || cfg.Turbo.ExtrinsicScale > 1 {
		return fmt.Errorf("turbo.extrinsic_scale must be in (0, 1]")
	}

	if len(cfg.Sweep.EbN0) == 0 {
		return fmt.Errorf("sweep.ebn0_db must list at least one point")
	}
	if cfg.Sweep.Blocks <= 0 {
		return fmt.Errorf("sweep.blocks must be positive")
	}
	if cfg.Sweep.BlockSize <= 0 {
		return fmt.Errorf("sweep.block_size must be positive")
	}
	if cfg.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must not be negative")
	}

	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	switch strings.ToUpper(cfg.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("log.level: invalid level %s", cfg.Log.Level)
	}
	return nil
}
