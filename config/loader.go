package config

import (
	"fmt"
	"os"
	"strings"

	bofryconfig "github.com/Bofry/config"
	"gopkg.in/yaml.v3"
)

// BofryLoader loads configuration using the Bofry/config library: YAML
// files, .env files and environment variables, highest priority last.
type BofryLoader struct {
	yamlFile       string
	dotEnvFile     string
	envPrefix      string
	useCommandArgs bool
}

// NewBofryLoader creates a loader with the default environment prefix.
func NewBofryLoader() *BofryLoader {
	return &BofryLoader{envPrefix: "SERENE_"}
}

// WithYAMLFile sets the YAML configuration file path.
func (l *BofryLoader) WithYAMLFile(path string) *BofryLoader {
	l.yamlFile = path
	return l
}

// WithDotEnvFile sets the .env file path.
func (l *BofryLoader) WithDotEnvFile(path string) *BofryLoader {
	l.dotEnvFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *BofryLoader) WithEnvPrefix(prefix string) *BofryLoader {
	l.envPrefix = prefix
	return l
}

// WithCommandArguments enables parsing --name=value command line arguments.
func (l *BofryLoader) WithCommandArguments() *BofryLoader {
	l.useCommandArgs = true
	return l
}

// Load fills cfg from defaults, then the configured sources.
func (l *BofryLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	if l.useCommandArgs {
		l.applyCommandArgs()
	}

	// Bofry/config panics on errors, so recover into a plain error.
	var loadErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					loadErr = err
				} else {
					loadErr = fmt.Errorf("configuration loading panic: %v", r)
				}
			}
		}()

		svc := bofryconfig.NewConfigurationService(cfg)

		if l.yamlFile != "" {
			if _, err := os.Stat(l.yamlFile); err == nil {
				svc.LoadYamlFile(l.yamlFile)
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to check YAML file: %w", err)
				return
			}
			// A missing file is not an error; defaults apply.
		}

		if l.dotEnvFile != "" {
			if _, err := os.Stat(l.dotEnvFile); err == nil {
				svc.LoadDotEnvFile(l.dotEnvFile)
			} else if !os.IsNotExist(err) {
				loadErr = fmt.Errorf("failed to check .env file: %w", err)
				return
			}
		}

		envPrefix := strings.TrimSuffix(l.envPrefix, "_")
		svc.LoadEnvironmentVariables(envPrefix)
	}()

	if loadErr != nil {
		return loadErr
	}

	return cfg.Validate()
}

// applyCommandArgs parses command line arguments in the form --name=value
// and sets them as environment variables using the configured prefix.
func (l *BofryLoader) applyCommandArgs() {
	for _, arg := range os.Args[1:] {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		kv := strings.SplitN(arg[2:], "=", 2)
		if len(kv) != 2 {
			continue
		}
		name := strings.ToUpper(strings.ReplaceAll(kv[0], "-", "_"))
		os.Setenv(l.envPrefix+name, kv[1])
	}
}

// YAMLLoader reads configuration from a single YAML file. Lighter than
// BofryLoader when environment layering is not needed (tests, tooling).
type YAMLLoader struct {
	path string
}

// NewYAMLLoader creates a loader for the given file.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{path: path}
}

// Load fills cfg from defaults, then the YAML file.
func (l *YAMLLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg.Validate()
}
