// Package config loads the widetable.conf key=value file from the widetable
// home directory.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/widetable/widetable-db/internal/widetable"
)

const (
	configFileName = "widetable.conf"
)

type Config struct {
	ServerPort     string
	MaxConnections int
	EnableTLS      bool

	HealthAddress string
	HealthPort    int

	FamilyName          string
	GCGraceSeconds      int64
	RowCacheSize        int
	FlushThresholdBytes int64

	CompactionIntervalSeconds int
	MinCompactionSegments     int

	Debug bool
}

// defaults returns a config a fresh install can boot with.
func defaults() *Config {
	return &Config{
		ServerPort:                "9072",
		MaxConnections:            100,
		HealthAddress:             "127.0.0.1",
		HealthPort:                9073,
		FamilyName:                "standard",
		GCGraceSeconds:            86400,
		RowCacheSize:              1024,
		FlushThresholdBytes:       8 << 20,
		CompactionIntervalSeconds: 300,
		MinCompactionSegments:     4,
	}
}

// NewConfig loads widetable.conf from the widetable directory, falling back
// to defaults when no file exists yet.
func NewConfig() (*Config, error) {
	dir, err := widetable.GetWidetableDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get widetable directory: %w", err)
	}

	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Info().Str("path", configPath).Msg("no config file found, using defaults")
		return defaults(), nil
	}

	return NewFromFile(configPath)
}

// NewFromFile parses one key=value per line; # starts a comment.
func NewFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := defaults()
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "server_port":
			config.ServerPort = value
		case "max_connections":
			config.MaxConnections, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid max connections value: %w", err)
			}
		case "enable_tls":
			config.EnableTLS = value == "true"
		case "health_address":
			config.HealthAddress = value
		case "health_port":
			config.HealthPort, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid health port value: %w", err)
			}
		case "family_name":
			config.FamilyName = value
		case "gc_grace_seconds":
			config.GCGraceSeconds, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid gc grace value: %w", err)
			}
		case "row_cache_size":
			config.RowCacheSize, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid row cache size value: %w", err)
			}
		case "flush_threshold_bytes":
			config.FlushThresholdBytes, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid flush threshold value: %w", err)
			}
		case "compaction_interval_seconds":
			config.CompactionIntervalSeconds, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid compaction interval value: %w", err)
			}
		case "min_compaction_segments":
			config.MinCompactionSegments, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid compaction segments value: %w", err)
			}
		case "debug":
			config.Debug = value == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return config, nil
}
