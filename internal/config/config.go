// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Config holds everything the pipeline needs from the environment.
type Config struct {
	// AppEnv selects logger behavior: "development" gets console output.
	AppEnv string
	// WorkDir is the directory scanned for input workbooks.
	WorkDir string
	// OutDir is where report artifacts are written. Defaults to WorkDir, as
	// the archive step expects inputs and outputs side by side.
	OutDir string
	// VATRate is the tax rate applied to the last purchase cost (IVA).
	VATRate decimal.Decimal
	// ArchivePrefix names the timestamped folder processed files move into.
	ArchivePrefix string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:        getenv("APP_ENV", "production"),
		WorkDir:       getenv("WORK_DIR", "."),
		ArchivePrefix: getenv("ARCHIVE_PREFIX", "BI-DATA-CC"),
	}
	cfg.OutDir = getenv("OUT_DIR", cfg.WorkDir)

	rate := getenv("VAT_RATE", "0.16")
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid VAT_RATE %q: %w", rate, err)
	}
	cfg.VATRate = d
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
