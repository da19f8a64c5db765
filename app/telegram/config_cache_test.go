package telegram

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
username: "@Shewabrand"

settings:
  enabled: true
  limit: 500
  download_media: true
  timeout: 15

filters:
  - field: "message"
    excludes:
      - "giveaway"
`

	err := os.WriteFile(filepath.Join(tempDir, "shewa.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 channelConfig, got %d", configCache.GetConfigCount())
	}

	channelConfig, err := configCache.GetConfig("shewa")
	if err != nil {
		t.Fatal(err)
	}

	if channelConfig.Username != "Shewabrand" {
		t.Errorf("Expected username 'Shewabrand', got '%s'", channelConfig.Username)
	}
	if channelConfig.Settings.Limit != 500 {
		t.Errorf("Expected limit 500, got %d", channelConfig.Settings.Limit)
	}
	if !channelConfig.Settings.DownloadMedia {
		t.Error("Expected download_media to be enabled")
	}
	if len(channelConfig.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(channelConfig.Filters))
	}
}

func TestConfigCacheDefaults(t *testing.T) {
	tempDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tempDir, "AwasMart.yml"), []byte("settings: {}\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	channelConfig, err := configCache.GetConfig("AwasMart")
	if err != nil {
		t.Fatal(err)
	}
	if channelConfig.Username != "AwasMart" {
		t.Errorf("Expected username from filename, got '%s'", channelConfig.Username)
	}
	if !channelConfig.Settings.Enabled {
		t.Error("Expected channel enabled by default")
	}
	if channelConfig.Settings.Limit != DefaultLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLimit, channelConfig.Settings.Limit)
	}
	if channelConfig.Settings.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %d, got %d", DefaultTimeout, channelConfig.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"bad-filter.yml": "filters:\n  - field: \"author\"\n    includes: [\"x\"]\n",
		"empty-rule.yml": "filters:\n  - field: \"message\"\n",
		"negative.yml":   "settings:\n  limit: -1\n",
		"badname.yml":    "username: \"not a name!\"\n",
	}

	for file, content := range tests {
		t.Run(file, func(t *testing.T) {
			tempDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tempDir, file), []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if err := NewConfigCache(tempDir).Run(); err == nil {
				t.Errorf("Expected error for %s", file)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected empty cache, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheAddKeepsOrder(t *testing.T) {
	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "shewa.yml"), []byte("username: Shewabrand\nsettings:\n  limit: 10\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"@ZemenExpress", "https://t.me/qnashcom", "shewabrand"} {
		if _, err := configCache.Add(name, 3000, false); err != nil {
			t.Fatal(err)
		}
	}

	configs := configCache.GetConfigs()
	if len(configs) != 3 {
		t.Fatalf("Expected 3 channels (file channel not duplicated), got %d", len(configs))
	}

	expected := []string{"Shewabrand", "ZemenExpress", "qnashcom"}
	for i, username := range expected {
		if configs[i].Username != username {
			t.Errorf("Position %d: expected %s, got %s", i, username, configs[i].Username)
		}
	}
	if configs[0].Settings.Limit != 10 {
		t.Errorf("Expected file settings to win, got limit %d", configs[0].Settings.Limit)
	}

	if _, err := configCache.Add("bad name", 10, false); err == nil {
		t.Error("Expected error for invalid username")
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := map[string]string{
		"@Shewabrand":                  "Shewabrand",
		"Shewabrand":                   "Shewabrand",
		"https://t.me/Shewabrand":      "Shewabrand",
		"t.me/s/Shewabrand/":           "Shewabrand",
		"  @helloomarketethiopia  ":    "helloomarketethiopia",
		"https://telegram.me/AwasMart": "AwasMart",
	}
	for input, expected := range tests {
		if got := NormalizeUsername(input); got != expected {
			t.Errorf("NormalizeUsername(%q) = %q, expected %q", input, got, expected)
		}
	}
}
