// Package config loads nest's own settings from nest.lua.
//
// The file is plain Lua evaluated by gopher-lua in a sandbox: os, io,
// module loading and debug are removed before user code runs. A read-only
// platform table (see package platform) lets one file serve several hosts:
//
//	nest = {
//	  caddyfile = platform.is_macos and "~/Library/Caddyfile" or "~/Caddyfile",
//	  bind_template = "unix/{home}/.{domain}.webserver.sock",
//	  backup_retention = 5,
//	  log_level = "info",
//	  encoding = { "gzip", "zstd" },
//	}
//
// Unset fields keep their defaults and a missing file is the same as an
// empty nest table. NEST_CONFIG_DIR moves the config directory and
// NEST_CADDYFILE overrides the Caddyfile path.
package config
