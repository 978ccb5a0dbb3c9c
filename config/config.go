package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	wasmdom "github.com/wippyai/wasm-dom"
	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/errors"
)

// EnvPrefix prefixes environment overrides: WASMDOM_WIDTH,
// WASMDOM_GUEST_PATH, WASMDOM_MEMORY_LIMIT_PAGES and so on.
const EnvPrefix = "WASMDOM"

// Config holds everything needed to run a guest against a document.
type Config struct {
	LogLevel     string       `mapstructure:"log_level"`
	DocumentFile string       `mapstructure:"document_file"`
	Guest        GuestConfig  `mapstructure:"guest"`
	Document     dom.Fixture  `mapstructure:"document"`
	Width        int          `mapstructure:"width"`
	Memory       MemoryConfig `mapstructure:"memory"`
}

// GuestConfig names the guest binary and the exports the runtime calls.
type GuestConfig struct {
	// Path of the wasm binary.
	Path string `mapstructure:"path"`
	// Event trampoline, called as (data, callback, ctx).
	CallbackExport string `mapstructure:"callback_export"`
	// Returns the context pointer passed to the trampoline. Optional.
	ContextExport string `mapstructure:"context_export"`
	// Called once after instantiation if exported.
	StartExport string `mapstructure:"start_export"`
	// Called per frame with the elapsed milliseconds if exported.
	StepExport string `mapstructure:"step_export"`
	// Called on Close if exported.
	EndExport string `mapstructure:"end_export"`
}

// MemoryConfig limits guest memory.
type MemoryConfig struct {
	// Maximum pages (64KB each). 0 keeps wazero's default.
	LimitPages uint32 `mapstructure:"limit_pages"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("width", 4)
	v.SetDefault("document_file", "")

	v.SetDefault("guest.path", "")
	v.SetDefault("guest.callback_export", "odin_dom_do_event_callback")
	v.SetDefault("guest.context_export", "default_context_ptr")
	v.SetDefault("guest.start_export", "_start")
	v.SetDefault("guest.step_export", "step")
	v.SetDefault("guest.end_export", "_end")

	v.SetDefault("memory.limit_pages", 4096) // 256MB
}

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// defaults alone always unmarshal
		panic(err)
	}
	return cfg
}

// Load reads configuration from defaults, the optional file at path and
// WASMDOM_ environment variables, in increasing priority.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.ParseFailed("config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ParseFailed("config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	if !wasmdom.Width(c.Width).Valid() {
		return errors.New(errors.PhaseConfigure, errors.KindUnsupportedWidth).
			Path("width").
			Value(c.Width).
			Detail("width must be 4 or 8, got %d", c.Width).
			Build()
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.PhaseConfigure, errors.KindInvalidInput).
			Path("log_level").
			Value(c.LogLevel).
			Detail("unknown log level %q", c.LogLevel).
			Build()
	}
	if c.Guest.CallbackExport == "" {
		return errors.InvalidInput(errors.PhaseConfigure, "guest.callback_export cannot be empty")
	}
	return nil
}

// NativeWidth returns the configured native integer width.
func (c *Config) NativeWidth() wasmdom.Width {
	return wasmdom.Width(c.Width)
}

// LoadDocument builds the document. A document file replaces the inline
// document section.
func (c *Config) LoadDocument() (*dom.Document, error) {
	fixture := c.Document
	if c.DocumentFile != "" {
		data, err := os.ReadFile(c.DocumentFile)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfigure, errors.KindNotFound, err, "read document file")
		}
		fixture, err = dom.ParseFixture(data)
		if err != nil {
			return nil, err
		}
	}
	return dom.LoadFixture(fixture)
}
