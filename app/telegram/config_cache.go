package telegram

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLimit   = 3000
	DefaultTimeout = 600
)

type ConfigCache struct {
	channelsDir string
	cache       map[string]*Config
	order       []string
	mu          sync.RWMutex
}

func NewConfigCache(channelsDir string) *ConfigCache {
	return &ConfigCache{
		channelsDir: channelsDir,
		cache:       make(map[string]*Config),
	}
}

// Run loads every <name>.yml in the channels directory. A missing or unset
// directory leaves the cache empty.
func (cc *ConfigCache) Run() error {
	if cc.channelsDir == "" {
		return nil
	}
	if _, err := os.Stat(cc.channelsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.channelsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		channelName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(channelName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "channel", channelName, "username", config.Username, "enabled", config.Settings.Enabled, "limit", config.Settings.Limit)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(channelName string) (*Config, error) {
	configFile := cc.getConfigFilePath(channelName)
	channelConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	channelConfig.Name = channelName
	if channelConfig.Username == "" {
		channelConfig.Username = channelName
	}
	channelConfig.Username = NormalizeUsername(channelConfig.Username)

	if err := cc.validateConfig(channelConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.store(channelConfig)
	return channelConfig, nil
}

// Add registers a channel named on the command line. Channels already loaded
// from a file keep their file settings.
func (cc *ConfigCache) Add(username string, limit int, downloadMedia bool) (*Config, error) {
	username = NormalizeUsername(username)

	if existing := cc.findByUsername(username); existing != nil {
		return existing, nil
	}

	channelConfig := &Config{
		Name:     username,
		Username: username,
		Settings: ConfigSettings{
			Enabled:       true,
			Limit:         limit,
			DownloadMedia: downloadMedia,
			Timeout:       DefaultTimeout,
		},
	}
	if err := cc.validateConfig(channelConfig); err != nil {
		return nil, fmt.Errorf("invalid channel %q: %w", username, err)
	}

	cc.store(channelConfig)
	return channelConfig, nil
}

func (cc *ConfigCache) GetConfig(channelName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	channelConfig, ok := cc.cache[channelName]
	if !ok {
		return nil, fmt.Errorf("channel config with name '%s' not found", channelName)
	}
	return channelConfig, nil
}

// GetConfigs returns the configurations in load order.
func (cc *ConfigCache) GetConfigs() []*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*Config, 0, len(cc.order))
	for _, name := range cc.order {
		configs = append(configs, cc.cache[name])
	}
	return configs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) findByUsername(username string) *Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	for _, channelConfig := range cc.cache {
		if strings.EqualFold(channelConfig.Username, username) {
			return channelConfig
		}
	}
	return nil
}

func (cc *ConfigCache) store(channelConfig *Config) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if _, ok := cc.cache[channelConfig.Name]; !ok {
		cc.order = append(cc.order, channelConfig.Name)
	}
	cc.cache[channelConfig.Name] = channelConfig
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	channelConfig := Config{Settings: ConfigSettings{Enabled: true}}
	if err := yaml.Unmarshal(data, &channelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if channelConfig.Settings.Limit == 0 {
		channelConfig.Settings.Limit = DefaultLimit
	}
	if channelConfig.Settings.Timeout == 0 {
		channelConfig.Settings.Timeout = DefaultTimeout
	}

	return &channelConfig, nil
}

func (cc *ConfigCache) validateConfig(channelConfig *Config) error {
	if channelConfig == nil {
		return fmt.Errorf("channelConfig is nil")
	}

	if channelConfig.Name == "" {
		return fmt.Errorf("channel name is required")
	}
	if !validUsername(channelConfig.Username) {
		return fmt.Errorf("invalid channel username %q", channelConfig.Username)
	}

	nonNegativeFields := map[string]int{
		"limit":   channelConfig.Settings.Limit,
		"timeout": channelConfig.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, filter := range channelConfig.Filters {
		if !validFilterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(channelName string) string {
	return filepath.Join(cc.channelsDir, channelName+".yml")
}

// NormalizeUsername accepts "@name", "name", "t.me/name" and
// "https://t.me/name" and returns "name".
func NormalizeUsername(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, prefix := range []string{"t.me/s/", "t.me/", "telegram.me/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSuffix(s, "/")
}

func validUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
