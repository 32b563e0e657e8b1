// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid config")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ptutor configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Backend REST API
	API APIConfig `toml:"api" json:"api"`

	// Firebase web app settings
	Firebase FirebaseConfig `toml:"firebase" json:"firebase"`

	// Where the signed-in session is kept between runs
	Session SessionConfig `toml:"session" json:"session"`

	Chat ChatConfig `toml:"chat" json:"chat"`

	UI UIConfig `toml:"ui" json:"ui"`

	Telemetry TelemetryConfig `toml:"telemetry" json:"telemetry"`

	Logging LoggingConfig `toml:"logging" json:"logging"`

	Audit AuditConfig `toml:"audit" json:"audit"`

	DevServer DevServerConfig `toml:"devserver" json:"devserver"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the backend root; requests go to BaseURL + "v1/...".
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds every backend request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RateLimit is the client-side request budget per second (0 = unlimited).
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the burst size for RateLimit.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// FirebaseConfig mirrors the Firebase web app configuration object.
type FirebaseConfig struct {
	APIKey            string `toml:"api_key" json:"api_key"`
	AuthDomain        string `toml:"auth_domain" json:"auth_domain"`
	ProjectID         string `toml:"project_id" json:"project_id"`
	StorageBucket     string `toml:"storage_bucket" json:"storage_bucket"`
	MessagingSenderID string `toml:"messaging_sender_id" json:"messaging_sender_id"`
	AppID             string `toml:"app_id" json:"app_id"`
	MeasurementID     string `toml:"measurement_id" json:"measurement_id"`

	// AuthURL is the Identity Toolkit root. Point it at the devserver (or
	// the Firebase emulator) for local work.
	AuthURL string `toml:"auth_url" json:"auth_url"`
	// TokenURL is the Secure Token root used to refresh ID tokens.
	TokenURL string `toml:"token_url" json:"token_url"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// Persist keeps the refresh token on disk (encrypted) between runs.
	Persist bool `toml:"persist" json:"persist"`
	// Path overrides the session file location (empty = ~/.ptutor/session.enc).
	Path string `toml:"path" json:"path"`
}

// ChatConfig contains chat screen settings.
type ChatConfig struct {
	// PollDelaySecs is how long to wait after sending before re-reading the thread.
	PollDelaySecs int `toml:"poll_delay_secs" json:"poll_delay_secs"`
	// RenderMarkdown renders assistant replies as markdown.
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "auto", "dark", "light"
	Theme string `toml:"theme" json:"theme"`
	// ShowHelp shows the key help footer.
	ShowHelp bool `toml:"show_help" json:"show_help"`
	// Currency is shown before amounts when the backend omits one.
	Currency string `toml:"currency" json:"currency"`
}

// TelemetryConfig contains request tracing and error reporting settings.
type TelemetryConfig struct {
	// TracesEnabled records per-operation timings to TracesPath.
	TracesEnabled bool `toml:"traces_enabled" json:"traces_enabled"`
	// TracesPath is the SQLite trace store (empty = ~/.ptutor/traces.db).
	TracesPath string `toml:"traces_path" json:"traces_path"`
	// RollbarToken enables remote error reporting when set.
	RollbarToken string `toml:"rollbar_token" json:"rollbar_token"`
	// Environment is reported to Rollbar ("development", "production").
	Environment string `toml:"environment" json:"environment"`
}

// LoggingConfig contains debug logging settings.
type LoggingConfig struct {
	// Debug writes a debug log while the dashboard runs.
	Debug bool `toml:"debug" json:"debug"`
	// Path is the debug log file (empty = ~/.ptutor/debug.log).
	Path string `toml:"path" json:"path"`
}

// AuditConfig contains local audit log settings.
type AuditConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the audit log file (empty = ~/.ptutor/audit.log).
	Path string `toml:"path" json:"path"`
	// MaxSizeMB triggers rotation once the log grows past it.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb"`
}

// DevServerConfig contains settings for the local mock backend.
type DevServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
	// OpenAIKey makes the devserver answer chats with a real model.
	OpenAIKey string `toml:"openai_key" json:"openai_key"`
	// OpenAIModel is the model used when OpenAIKey is set.
	OpenAIModel string `toml:"openai_model" json:"openai_model"`
	// OpenAIBaseURL points the devserver at an OpenAI-compatible endpoint.
	OpenAIBaseURL string `toml:"openai_base_url" json:"openai_base_url"`
	// SigningKey signs the devserver's emulated ID tokens.
	SigningKey string `toml:"signing_key" json:"signing_key"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL:     "http://127.0.0.1:8000/",
			TimeoutSecs: 30,
			RateLimit:   10,
			RateBurst:   20,
		},

		Firebase: FirebaseConfig{
			AuthURL:  "https://identitytoolkit.googleapis.com",
			TokenURL: "https://securetoken.googleapis.com",
		},

		Session: SessionConfig{
			Persist: true,
		},

		Chat: ChatConfig{
			PollDelaySecs:  5,
			RenderMarkdown: true,
		},

		UI: UIConfig{
			Theme:    "auto",
			ShowHelp: true,
			Currency: "$",
		},

		Telemetry: TelemetryConfig{
			TracesEnabled: true,
			Environment:   "production",
		},

		Audit: AuditConfig{
			Enabled:   true,
			MaxSizeMB: 10,
		},

		DevServer: DevServerConfig{
			Addr:        "127.0.0.1:8000",
			OpenAIModel: "gpt-3.5-turbo-1106",
			SigningKey:  "ptutor-devserver",
		},
	}
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// PollDelay returns the chat poll delay as a duration.
func (c ChatConfig) PollDelay() time.Duration {
	return time.Duration(c.PollDelaySecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ptutor configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("PTUTOR_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ptutor"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	return inConfigDir("config.toml")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// SessionPath returns the configured session file or the default location.
func (c *Config) SessionPath() (string, error) {
	if c.Session.Path != "" {
		return c.Session.Path, nil
	}
	return inConfigDir("session.enc")
}

// TracesPath returns the configured trace store or the default location.
func (c *Config) TracesPath() (string, error) {
	if c.Telemetry.TracesPath != "" {
		return c.Telemetry.TracesPath, nil
	}
	return inConfigDir("traces.db")
}

// LogPath returns the configured debug log or the default location.
func (c *Config) LogPath() (string, error) {
	if c.Logging.Path != "" {
		return c.Logging.Path, nil
	}
	return inConfigDir("debug.log")
}

// AuditPath returns the configured audit log or the default location.
func (c *Config) AuditPath() (string, error) {
	if c.Audit.Path != "" {
		return c.Audit.Path, nil
	}
	return inConfigDir("audit.log")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ensureSecurePermissions tightens a config file to 0600. The file holds the
// Firebase API key and possibly an OpenAI key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.ptutor/config.toml, falling back to
// defaults when the file does not exist. The .env file and environment
// overrides are applied last. A file that exists but cannot be decoded is
// reported alongside the defaults so callers can warn and carry on.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return finish(Default(), nil)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default(), nil)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return finish(Default(), fmt.Errorf("failed to load TOML config: %w", err))
	}
	return finish(cfg, nil)
}

// LoadFromPath loads configuration from a specific file with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return finish(cfg, nil)
}

// finish runs the shared post-load pipeline. loadErr is passed through so
// Load can report a broken file while still returning usable defaults.
func finish(cfg *Config, loadErr error) (*Config, error) {
	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
// Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys ignored: %s\n", strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# ptutor configuration file")
	fmt.Fprintln(file, "# Firebase settings may also come from FIREBASE_* or NEXT_PUBLIC_FIREBASE_* variables")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: err.Error()})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "api.rate_limit", Message: "must not be negative"})
	}
	if c.API.RateLimit > 0 && c.API.RateBurst < 1 {
		errs = append(errs, ValidationError{Field: "api.rate_burst", Message: "must be at least 1 when rate_limit is set"})
	}

	if err := validateHTTPURL(c.Firebase.AuthURL); err != nil {
		errs = append(errs, ValidationError{Field: "firebase.auth_url", Message: err.Error()})
	}
	if err := validateHTTPURL(c.Firebase.TokenURL); err != nil {
		errs = append(errs, ValidationError{Field: "firebase.token_url", Message: err.Error()})
	}

	if c.Chat.PollDelaySecs < 1 || c.Chat.PollDelaySecs > 120 {
		errs = append(errs, ValidationError{
			Field:   "chat.poll_delay_secs",
			Message: fmt.Sprintf("must be between 1 and 120, got %d", c.Chat.PollDelaySecs),
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if c.Audit.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{Field: "audit.max_size_mb", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// SetDefaults fills values that are zero after decoding and normalises the rest.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if !strings.HasSuffix(c.API.BaseURL, "/") {
		c.API.BaseURL += "/"
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Firebase.AuthURL == "" {
		c.Firebase.AuthURL = d.Firebase.AuthURL
	}
	if c.Firebase.TokenURL == "" {
		c.Firebase.TokenURL = d.Firebase.TokenURL
	}
	c.Firebase.AuthURL = strings.TrimSuffix(c.Firebase.AuthURL, "/")
	c.Firebase.TokenURL = strings.TrimSuffix(c.Firebase.TokenURL, "/")
	if c.Chat.PollDelaySecs == 0 {
		c.Chat.PollDelaySecs = d.Chat.PollDelaySecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	if c.UI.Currency == "" {
		c.UI.Currency = d.UI.Currency
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = d.Telemetry.Environment
	}
	if c.Audit.MaxSizeMB == 0 {
		c.Audit.MaxSizeMB = d.Audit.MaxSizeMB
	}
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = d.DevServer.Addr
	}
	if c.DevServer.OpenAIModel == "" {
		c.DevServer.OpenAIModel = d.DevServer.OpenAIModel
	}
	if c.DevServer.SigningKey == "" {
		c.DevServer.SigningKey = d.DevServer.SigningKey
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "chat.poll_delay_secs").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct by toml tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every leaf configuration key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		section := strings.Split(f.Tag.Get("toml"), ",")[0]
		if f.Type.Kind() != reflect.Struct {
			keys = append(keys, section)
			continue
		}
		for j := 0; j < f.Type.NumField(); j++ {
			name := strings.Split(f.Type.Field(j).Tag.Get("toml"), ",")[0]
			keys = append(keys, section+"."+name)
		}
	}
	return keys
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the configuration. Config holds no maps or slices,
// so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	for _, s := range []*string{
		&safe.Firebase.APIKey,
		&safe.Telemetry.RollbarToken,
		&safe.DevServer.OpenAIKey,
		&safe.DevServer.SigningKey,
	} {
		if *s != "" {
			*s = "[REDACTED]"
		}
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if cfg == nil {
		return err
	}
	globalConfigMu.Lock()
	globalConfig = cfg
	globalConfigMu.Unlock()
	return err
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
