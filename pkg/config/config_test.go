package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_DefaultValues(t *testing.T) {
	viper.Reset()

	tests := []struct {
		name     string
		field    string
		expected interface{}
	}{
		{"Port", "Port", 7777},
		{"BasePath", "BasePath", "."},
		{"Standalone", "Standalone", false},
		{"TickMS", "TickMS", 50},
		{"MaxGames", "MaxGames", 64},
		{"IronDripMS", "IronDripMS", 10_000},
		{"BaseResourceGain", "BaseResourceGain", 1.0},
		{"LogLevel", "LogLevel", "info"},
	}

	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Get()
			var actual interface{}
			switch tt.field {
			case "Port":
				actual = cfg.Port
			case "BasePath":
				actual = cfg.BasePath
			case "Standalone":
				actual = cfg.Standalone
			case "TickMS":
				actual = cfg.TickMS
			case "MaxGames":
				actual = cfg.MaxGames
			case "IronDripMS":
				actual = cfg.IronDripMS
			case "BaseResourceGain":
				actual = cfg.BaseResourceGain
			case "LogLevel":
				actual = cfg.LogLevel
			}
			if actual != tt.expected {
				t.Errorf("Config.%s = %v, want %v", tt.field, actual, tt.expected)
			}
		})
	}
}

func TestLoad_TOMLParsing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configData := `
Port = 9001
BasePath = "/srv/dissonance"
Standalone = true
TickMS = 40
MaxGames = 8
IronDripMS = 5000
BaseResourceGain = 2.5
LogLevel = "debug"
`
	if err := os.WriteFile(configPath, []byte(configData), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(tmpDir)

	viper.SetDefault("Port", 7777)
	viper.SetDefault("BasePath", ".")
	viper.SetDefault("Standalone", false)
	viper.SetDefault("TickMS", 50)
	viper.SetDefault("MaxGames", 64)
	viper.SetDefault("IronDripMS", 10_000)
	viper.SetDefault("BaseResourceGain", 1.0)
	viper.SetDefault("LogLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("viper.ReadInConfig() failed: %v", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		t.Fatalf("viper.Unmarshal() failed: %v", err)
	}

	cfg := Get()
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 9001},
		{"BasePath", cfg.BasePath, "/srv/dissonance"},
		{"Standalone", cfg.Standalone, true},
		{"TickMS", cfg.TickMS, 40},
		{"MaxGames", cfg.MaxGames, 8},
		{"IronDripMS", cfg.IronDripMS, 5000},
		{"BaseResourceGain", cfg.BaseResourceGain, 2.5},
		{"LogLevel", cfg.LogLevel, "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Config.%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_MissingFileFallback(t *testing.T) {
	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/nonexistent/path")

	if err := Load(); err != nil {
		t.Errorf("Load() with missing file should not error, got: %v", err)
	}

	cfg := Get()
	if cfg.Port != 7777 {
		t.Errorf("Default Port = %d, want 7777", cfg.Port)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(tmpDir)

	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	cfg := Config{
		Port: 9100, BasePath: "/opt/d", Standalone: true, TickMS: 50,
		MaxGames: 4, IronDripMS: 10_000, BaseResourceGain: 1.2, LogLevel: "warn",
	}
	Set(cfg)

	viper.Set("Port", cfg.Port)
	viper.Set("BasePath", cfg.BasePath)
	viper.Set("Standalone", cfg.Standalone)
	viper.Set("TickMS", cfg.TickMS)
	viper.Set("MaxGames", cfg.MaxGames)
	viper.Set("IronDripMS", cfg.IronDripMS)
	viper.Set("BaseResourceGain", cfg.BaseResourceGain)
	viper.Set("LogLevel", cfg.LogLevel)

	if err := viper.WriteConfigAs(configPath); err != nil {
		t.Fatalf("viper.WriteConfigAs() failed: %v", err)
	}

	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(tmpDir)

	if err := Load(); err != nil {
		t.Fatalf("Load() after save failed: %v", err)
	}

	newCfg := Get()
	if newCfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", newCfg.Port)
	}
	if newCfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want warn", newCfg.LogLevel)
	}
}

func TestWatch_HotReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	initialData := `
Port = 7777
LogLevel = "info"
`
	if err := os.WriteFile(configPath, []byte(initialData), 0o644); err != nil {
		t.Fatalf("Failed to write initial config: %v", err)
	}

	viper.Reset()
	mu.Lock()
	C = Config{}
	mu.Unlock()

	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(tmpDir)
	viper.SetDefault("Port", 7777)
	viper.SetDefault("LogLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("viper.ReadInConfig() failed: %v", err)
	}
	mu.Lock()
	if err := viper.Unmarshal(&C); err != nil {
		mu.Unlock()
		t.Fatalf("viper.Unmarshal() failed: %v", err)
	}
	mu.Unlock()

	initialCfg := Get()
	if initialCfg.Port != 7777 {
		t.Fatalf("Initial Port = %d, want 7777", initialCfg.Port)
	}

	var callbackCalled bool
	var newCfg Config
	var cbMu sync.Mutex

	callback := func(old, new Config) {
		cbMu.Lock()
		callbackCalled = true
		newCfg = new
		cbMu.Unlock()
		t.Logf("Hot-reload callback invoked: old.Port=%d, new.Port=%d", old.Port, new.Port)
	}

	stop, err := Watch(callback)
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer stop()

	time.Sleep(100 * time.Millisecond)

	modifiedData := `
Port = 9002
LogLevel = "debug"
`
	if err := os.WriteFile(configPath, []byte(modifiedData), 0o644); err != nil {
		t.Fatalf("Failed to write modified config: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	cbMu.Lock()
	called := callbackCalled
	cbMu.Unlock()
	if !called {
		t.Error("Callback was not called after config change")
		return
	}

	cbMu.Lock()
	if newCfg.Port != 9002 {
		t.Errorf("Callback new.Port = %d, want 9002", newCfg.Port)
	}
	cbMu.Unlock()

	cfg := Get()
	if cfg.Port != 9002 {
		t.Errorf("Global Port = %d, want 9002", cfg.Port)
	}
}

func TestWatch_NilCallback(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte(`Port = 7777`), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(tmpDir)

	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	stop, err := Watch(nil)
	if err != nil {
		t.Fatalf("Watch(nil) failed: %v", err)
	}
	defer stop()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configPath, []byte(`Port = 9003`), 0o644); err != nil {
		t.Fatalf("Failed to write modified config: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	cfg := Get()
	if cfg.Port != 9003 {
		t.Errorf("Port = %d, want 9003", cfg.Port)
	}
}

func TestGetSet_Concurrency(t *testing.T) {
	viper.Reset()
	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	var wg sync.WaitGroup
	iterations := 100

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = Get()
			}
		}()
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				cfg := Get()
				cfg.Port = 8000 + id
				Set(cfg)
			}
		}(i)
	}

	wg.Wait()

	cfg := Get()
	if cfg.Port < 8000 || cfg.Port >= 8010 {
		t.Logf("Final Port = %d (expected in range [8000, 8010))", cfg.Port)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	invalidData := `
Port = "not a number"
[[[invalid structure
`
	if err := os.WriteFile(configPath, []byte(invalidData), 0o644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(tmpDir)

	if err := Load(); err == nil {
		t.Error("Load() should return error for invalid TOML")
	}
}
