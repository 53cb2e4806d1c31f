package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alucardeht/workspace-lens/internal/watcher"
	"github.com/alucardeht/workspace-lens/internal/workspace"
)

const (
	envPrefix      = "WSLENS"
	configFileName = ".wslens"

	// NodeModulesPattern is always part of discovery.exclude_patterns.
	NodeModulesPattern = "**/node_modules/**"
)

type DiscoveryConfig struct {
	WorkspaceFile   string   `mapstructure:"workspace_file"`
	ManifestFile    string   `mapstructure:"manifest_file"`
	ExcludePatterns []string `mapstructure:"exclude_patterns"`
	Nesting         string   `mapstructure:"nesting"`
	Workers         int      `mapstructure:"workers"`
}

type Config struct {
	Root       string                `mapstructure:"-"`
	SocketPath string                `mapstructure:"socket_path"`
	LogLevel   string                `mapstructure:"log_level"`
	LogFormat  string                `mapstructure:"log_format"`
	Scope      string                `mapstructure:"scope"`
	Discovery  DiscoveryConfig       `mapstructure:"discovery"`
	Watcher    watcher.WatcherConfig `mapstructure:"watcher"`
}

func setDefaults(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	v.SetDefault("socket_path", filepath.Join(homeDir, ".wslens", "daemon.sock"))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("scope", "")

	v.SetDefault("discovery.workspace_file", "pnpm-workspace.yaml")
	v.SetDefault("discovery.manifest_file", "package.json")
	v.SetDefault("discovery.exclude_patterns", []string{NodeModulesPattern})
	v.SetDefault("discovery.nesting", "first")
	v.SetDefault("discovery.workers", 4)

	def := watcher.DefaultWatcherConfig()
	v.SetDefault("watcher.enabled", def.Enabled)
	v.SetDefault("watcher.debounce_window", def.DebounceWindow)
	v.SetDefault("watcher.max_batch_size", def.MaxBatchSize)
	v.SetDefault("watcher.ignore_patterns", def.IgnorePatterns)
	v.SetDefault("watcher.watch_hidden", def.WatchHidden)
}

// Load resolves configuration for a workspace root. Values come from defaults,
// then $HOME/.wslens/config.yaml, then <root>/.wslens.yaml, then WSLENS_* env.
func Load(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if homeDir, err := os.UserHomeDir(); err == nil {
		if err := mergeFile(v, filepath.Join(homeDir, ".wslens", "config.yaml")); err != nil {
			return nil, err
		}
	}

	if root != "" {
		if err := mergeFile(v, filepath.Join(root, configFileName+".yaml")); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	cfg.Root = absRoot

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Discovery.Nesting {
	case "first", "shortest":
	default:
		return fmt.Errorf("invalid discovery.nesting %q: want first or shortest", c.Discovery.Nesting)
	}

	if c.Discovery.WorkspaceFile == "" {
		return fmt.Errorf("discovery.workspace_file must not be empty")
	}
	if c.Discovery.ManifestFile == "" {
		return fmt.Errorf("discovery.manifest_file must not be empty")
	}
	if !slices.Contains(c.Discovery.ExcludePatterns, NodeModulesPattern) {
		c.Discovery.ExcludePatterns = append(c.Discovery.ExcludePatterns, NodeModulesPattern)
	}
	if c.Discovery.Workers < 1 {
		c.Discovery.Workers = 1
	}
	if c.Watcher.DebounceWindow <= 0 {
		c.Watcher.DebounceWindow = 300 * time.Millisecond
	}
	if c.Watcher.MaxBatchSize <= 0 {
		c.Watcher.MaxBatchSize = 100
	}

	return nil
}

func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(filepath.Dir(c.SocketPath), 0700)
}

// WorkspaceOptions maps the discovery settings onto a scan configuration.
func (c *Config) WorkspaceOptions() workspace.Options {
	opts := workspace.DefaultOptions()
	opts.WorkspaceFile = c.Discovery.WorkspaceFile
	opts.Nesting = workspace.NestingPolicy(c.Discovery.Nesting)
	opts.Discover.ManifestFile = c.Discovery.ManifestFile
	opts.Discover.ExcludePatterns = c.Discovery.ExcludePatterns
	opts.Discover.Workers = c.Discovery.Workers
	return opts
}
