// Package config handles loading and hot-reloading server configuration.
package config

import (
	"context"
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all server configuration values.
type Config struct {
	Port             int     `mapstructure:"Port"`
	BasePath         string  `mapstructure:"BasePath"`
	Standalone       bool    `mapstructure:"Standalone"`
	TickMS           int     `mapstructure:"TickMS"`
	MaxGames         int     `mapstructure:"MaxGames"`
	IronDripMS       int     `mapstructure:"IronDripMS"`
	BaseResourceGain float64 `mapstructure:"BaseResourceGain"`
	LogLevel         string  `mapstructure:"LogLevel"`
}

// C is the global configuration instance.
var C Config

// mu protects concurrent access to C during hot-reload.
var mu sync.RWMutex

var (
	watcherMu       sync.Mutex
	watcherActive   bool
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
	currentCallback ReloadCallback
)

// ReloadCallback is called when the configuration is hot-reloaded.
type ReloadCallback func(old, new Config)

// Load reads configuration from file and environment, populating C.
func Load() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.dissonance")

	viper.SetDefault("Port", 7777)
	viper.SetDefault("BasePath", ".")
	viper.SetDefault("Standalone", false)
	viper.SetDefault("TickMS", 50)
	viper.SetDefault("MaxGames", 64)
	viper.SetDefault("IronDripMS", 10_000)
	viper.SetDefault("BaseResourceGain", 1.0)
	viper.SetDefault("LogLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return viper.Unmarshal(&C)
}

// Save writes the current configuration to file.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	viper.Set("Port", C.Port)
	viper.Set("BasePath", C.BasePath)
	viper.Set("Standalone", C.Standalone)
	viper.Set("TickMS", C.TickMS)
	viper.Set("MaxGames", C.MaxGames)
	viper.Set("IronDripMS", C.IronDripMS)
	viper.Set("BaseResourceGain", C.BaseResourceGain)
	viper.Set("LogLevel", C.LogLevel)

	return viper.WriteConfig()
}

// Watch starts watching the config file for changes and calls the
// callback on reload. Returns a stop function to cancel watching. Only one
// watcher can be active at a time; calling Watch when a watcher is active
// replaces the callback but keeps the same underlying file watcher (to
// avoid viper race conditions).
func Watch(callback ReloadCallback) (stop func(), err error) {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	if !watcherActive {
		ctx, cancel := context.WithCancel(context.Background())
		watcherCtx = ctx
		watcherCancel = cancel
		currentCallback = callback
		watcherActive = true

		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			watcherMu.Lock()
			cb := currentCallback
			ctx := watcherCtx
			watcherMu.Unlock()

			if ctx != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
			}

			mu.Lock()
			old := C
			var newCfg Config
			if err := viper.Unmarshal(&newCfg); err == nil {
				C = newCfg
				mu.Unlock()
				if cb != nil {
					cb(old, newCfg)
				}
			} else {
				mu.Unlock()
			}
		})
	} else {
		currentCallback = callback
	}

	return func() {
		watcherMu.Lock()
		defer watcherMu.Unlock()
		if watcherCancel != nil {
			watcherCancel()
			watcherCancel = nil
			watcherCtx = nil
		}
		watcherActive = false
		currentCallback = nil
	}, nil
}

// Get returns a copy of the current config safely.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return C
}

// Set updates the config safely.
func Set(cfg Config) {
	mu.Lock()
	C = cfg
	mu.Unlock()
}
