package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Settings is nest's own configuration, read from nest.lua.
type Settings struct {
	// Caddyfile is the file nest edits. Supports ~ and {home}.
	Caddyfile string `json:"caddyfile" yaml:"caddyfile"`

	// BindTemplate is the bind address given to new sites. {home} and
	// {domain} are expanded. Empty means new sites get no bind line.
	BindTemplate string `json:"bind_template,omitempty" yaml:"bind_template,omitempty"`

	// BackupRetention is how many previous Caddyfile versions to keep.
	// Zero disables backups.
	BackupRetention int `json:"backup_retention" yaml:"backup_retention"`

	// BackupDir holds the backups. Empty means <config dir>/backups.
	BackupDir string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Encoding is applied to sites created by nest.
	Encoding []string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// Defaults.
const (
	DefaultCaddyfile       = "~/Caddyfile"
	DefaultBindTemplate    = "unix/{home}/.{domain}.webserver.sock"
	DefaultBackupRetention = 5
	DefaultLogLevel        = "info"

	maxBackupRetention = 100
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultSettings returns the settings used when nest.lua does not exist.
func DefaultSettings() *Settings {
	return &Settings{
		Caddyfile:       DefaultCaddyfile,
		BindTemplate:    DefaultBindTemplate,
		BackupRetention: DefaultBackupRetention,
		LogLevel:        DefaultLogLevel,
		Encoding:        []string{"gzip", "zstd"},
	}
}

// Validate checks the settings for values nest cannot work with.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Caddyfile) == "" {
		return &ValidationError{Field: luaFieldCaddyfile, Message: "cannot be empty"}
	}
	if strings.ContainsAny(s.Caddyfile, "\n\r\x00") {
		return &ValidationError{Field: luaFieldCaddyfile, Message: "contains control characters"}
	}
	if err := validateBindTemplate(s.BindTemplate); err != nil {
		return err
	}
	if s.BackupRetention < 0 || s.BackupRetention > maxBackupRetention {
		return &ValidationError{
			Field:   luaFieldBackupRetention,
			Message: fmt.Sprintf("must be between 0 and %d, got %d", maxBackupRetention, s.BackupRetention),
		}
	}
	if !slices.Contains(validLogLevels, s.LogLevel) {
		return &ValidationError{
			Field:   luaFieldLogLevel,
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(validLogLevels, ", "), s.LogLevel),
		}
	}
	for _, enc := range s.Encoding {
		if enc == "" || strings.ContainsAny(enc, " \t{}") {
			return &ValidationError{Field: luaFieldEncoding, Message: fmt.Sprintf("invalid encoding %q", enc)}
		}
	}
	return nil
}

// validateBindTemplate rejects templates that would break the Caddyfile
// grammar once expanded.
func validateBindTemplate(tmpl string) error {
	if tmpl == "" {
		return nil
	}
	if strings.ContainsAny(tmpl, "\n\r") {
		return &ValidationError{Field: luaFieldBindTemplate, Message: "must be a single line"}
	}
	rest := strings.ReplaceAll(tmpl, PlaceholderHome, "")
	rest = strings.ReplaceAll(rest, PlaceholderDomain, "")
	if strings.ContainsAny(rest, "{}") {
		return &ValidationError{
			Field:   luaFieldBindTemplate,
			Message: fmt.Sprintf("only %s and %s placeholders are supported", PlaceholderHome, PlaceholderDomain),
		}
	}
	return nil
}

// ValidationError reports an invalid settings value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// CaddyfilePath returns the Caddyfile location with ~ and {home} expanded.
// NEST_CADDYFILE takes precedence over the configured value.
func (s *Settings) CaddyfilePath() (string, error) {
	path := s.Caddyfile
	if env := os.Getenv(EnvCaddyfile); env != "" {
		path = env
	}
	return ExpandPath(path)
}

// BindFor expands the bind template for domain. It returns "" when no
// template is configured.
func (s *Settings) BindFor(domain string) (string, error) {
	if s.BindTemplate == "" {
		return "", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	bind := strings.ReplaceAll(s.BindTemplate, PlaceholderHome, home)
	return strings.ReplaceAll(bind, PlaceholderDomain, domain), nil
}

// BackupPath returns the backup directory, defaulting to configDir/backups.
func (s *Settings) BackupPath(configDir string) (string, error) {
	if s.BackupDir == "" {
		return filepath.Join(configDir, "backups"), nil
	}
	return ExpandPath(s.BackupDir)
}

// ExpandPath expands a leading ~ and any {home} placeholder.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.Contains(path, PlaceholderHome) {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		path = home
	} else if rest, ok := strings.CutPrefix(path, "~/"); ok {
		path = filepath.Join(home, rest)
	}
	return filepath.Clean(strings.ReplaceAll(path, PlaceholderHome, home)), nil
}

// ConfigDir returns the directory holding nest.lua and backups:
// $NEST_CONFIG_DIR, or the user config dir plus "nest".
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandPath(dir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, "nest"), nil
}
