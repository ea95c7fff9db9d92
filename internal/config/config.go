// Copyright (C) 2025 Jeff Rose
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/drone/envsubst"
	"github.com/whiskeyjimbo/DNSWatch/internal/rules"
	"gopkg.in/yaml.v2"
)

const (
	DefaultDomain   = "example.internal"
	DefaultWorkers  = 1
	DefaultTTL      = 0
	DefaultInterval = time.Second
	DefaultTimeout  = 5 * time.Second
	DefaultListen   = ":9101"
)

// Config holds everything decided at startup. Immutable once Load
// returns.
type Config struct {
	Domain     string
	Workers    int
	TTL        time.Duration
	Interval   time.Duration
	Timeout    time.Duration
	PreferIPv4 bool
	LogLevel   string

	ListenAddress string
	WebDisabled   bool

	Rules []rules.Rule
}

// RulesFile is the schema of the optional YAML file passed with
// --config.path. Environment references ($VAR / ${VAR}) in the file are
// substituted before parsing.
type RulesFile struct {
	Rules []rules.Rule `yaml:"rules"`
}

// Load parses the command line (args as passed to the process, program
// name included) and the optional rules file. All failures are fatal
// configuration errors: the caller reports the message and exits before
// any worker is scheduled.
func Load(args []string) (*Config, error) {
	app := kingpin.New("dnswatch", "Concurrent DNS resolution watcher")

	var (
		domain     = app.Arg("domain", "Domain name to watch").Default(DefaultDomain).String()
		workersArg = app.Arg("workers", "Number of concurrent resolution workers").Default(strconv.Itoa(DefaultWorkers)).String()
		ttlArg     = app.Arg("ttl", "Resolver cache TTL in seconds, 0 disables caching").Default(strconv.Itoa(DefaultTTL)).String()

		interval   = app.Flag("interval", "Aggregate polling interval across all workers").Default(DefaultInterval.String()).Duration()
		timeout    = app.Flag("timeout", "Per-resolution timeout").Default(DefaultTimeout.String()).Duration()
		preferIPv4 = app.Flag("prefer-ipv4", "Resolve IPv4 addresses only").Default("true").Bool()
		logLevel   = app.Flag("log.level", "Log verbosity: debug, info, warn or error").Default("info").String()

		listen      = app.Flag("web.listen-address", "Address for the metrics and health endpoints").Default(DefaultListen).String()
		webDisabled = app.Flag("web.disabled", "Disable the metrics and health endpoints").Bool()

		rulesPath = app.Flag("config.path", "Path to a YAML file with drift/latency rules").Default("").String()
	)

	if _, err := app.Parse(args[1:]); err != nil {
		return nil, err
	}

	workers, err := strconv.Atoi(*workersArg)
	if err != nil {
		return nil, fmt.Errorf("invalid worker count: %q", *workersArg)
	}

	ttlSeconds, err := strconv.Atoi(*ttlArg)
	if err != nil {
		return nil, fmt.Errorf("invalid TTL value: %q", *ttlArg)
	}

	cfg := &Config{
		Domain:        *domain,
		Workers:       workers,
		TTL:           time.Duration(ttlSeconds) * time.Second,
		Interval:      *interval,
		Timeout:       *timeout,
		PreferIPv4:    *preferIPv4,
		LogLevel:      *logLevel,
		ListenAddress: *listen,
		WebDisabled:   *webDisabled,
	}

	if *rulesPath != "" {
		cfg.Rules, err = loadRules(*rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
	}

	if err := validateConfig(cfg, ttlSeconds); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadRules(filename string) ([]rules.Rule, error) {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, err
	}

	expanded, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, err
	}

	return file.Rules, nil
}

func validateConfig(c *Config, ttlSeconds int) error {
	if c.Domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid worker count: %d, must be at least 1", c.Workers)
	}
	if ttlSeconds < 0 {
		return fmt.Errorf("invalid TTL value: %d, must not be negative", ttlSeconds)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	for _, rule := range c.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("invalid rule: %w", err)
		}
	}
	return nil
}
