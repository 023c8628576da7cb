package config

// Lua globals and field names of nest.lua.
const (
	luaGlobalNest           = "nest"
	luaFieldCaddyfile       = "caddyfile"
	luaFieldBindTemplate    = "bind_template"
	luaFieldBackupRetention = "backup_retention"
	luaFieldBackupDir       = "backup_dir"
	luaFieldLogLevel        = "log_level"
	luaFieldEncoding        = "encoding"
)

// Environment variables that override settings.
const (
	EnvConfigDir = "NEST_CONFIG_DIR"
	EnvCaddyfile = "NEST_CADDYFILE"
)

// Placeholders expanded in paths and the bind template.
const (
	PlaceholderHome   = "{home}"
	PlaceholderDomain = "{domain}"
)

// SettingsFileName is the settings file inside the config directory.
const SettingsFileName = "nest.lua"
