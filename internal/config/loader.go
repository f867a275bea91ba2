package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/fbdialect/pkg/adapters/firebird"
)

// OutputFormats lists the accepted --output values.
var OutputFormats = []string{"auto", "table", "json", "yaml", "markdown"}

// flagKeys maps command-line flags onto config keys. Flags not listed here
// are command options and never reach the config.
var flagKeys = map[string]string{
	"url":       "url",
	"host":      "target.host",
	"port":      "target.port",
	"database":  "target.database",
	"user":      "target.user",
	"password":  "target.password",
	"charset":   "target.charset",
	"role":      "target.role",
	"read-only": "target.readOnly",
	"timezone":  "timezone",
	"output":    "output",
	"verbose":   "verbose",
}

// LoadOptions selects the sources of a Load.
type LoadOptions struct {
	// ConfigFile is an explicit config path. Empty means fbdialect.yaml or
	// fbdialect.yml in the working directory, if present.
	ConfigFile string
	// EnvFile is an explicit dotenv path. Empty means .env in the working
	// directory, if present.
	EnvFile string
	Flags   *pflag.FlagSet
}

// Result is a loaded configuration and the files it was read from.
type Result struct {
	*Config
	ConfigFile string
	EnvFile    string
}

// findConfigFile finds the config file to use.
// Priority: explicit path > fbdialect.yaml > fbdialect.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, file, dotenv, environment and flags.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults
func Load(opts LoadOptions) (*Result, error) {
	k := koanf.New(".")
	res := &Result{}

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	res.ConfigFile = findConfigFile(opts.ConfigFile)
	if res.ConfigFile != "" {
		if err := k.Load(file.Provider(res.ConfigFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", res.ConfigFile, err)
		}
	}

	// 3. Dotenv, loaded into the process environment. Variables already set
	// in the environment win.
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = EnvFileName
	}
	switch err := godotenv.Load(envFile); {
	case err == nil:
		res.EnvFile = envFile
	case opts.EnvFile == "" && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
	}

	// 4. Environment: FBDIALECT_TARGET_HOST -> target.host
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags that were explicitly set
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.URL != "" {
		u, err := firebird.ParseConnectionURL(expandEnvVars(cfg.URL))
		if err != nil {
			return nil, fmt.Errorf("invalid url: %w", err)
		}
		applyURL(&cfg.Target, u)
	}
	expandTargetEnvVars(&cfg.Target)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res.Config = &cfg
	return res, nil
}

// Validate checks the CLI-level settings. Connection settings are checked
// when a command connects, so commands that never connect work without them.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("connect_attempts must be at least 1, got %d", c.ConnectAttempts)
	}
	return nil
}

// envKey maps an environment variable onto a config key. Target options
// accept their name with or without underscores, e.g. both
// FBDIALECT_TARGET_READONLY and FBDIALECT_TARGET_READ_ONLY set target.readOnly.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	rest, ok := strings.CutPrefix(key, "target_")
	if !ok {
		return key
	}
	flat := strings.ReplaceAll(rest, "_", "")
	for _, name := range firebird.OptionNames {
		if strings.EqualFold(name, flat) {
			return "target." + name
		}
	}
	return "target." + rest
}
