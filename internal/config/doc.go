// Package config loads settings for the observe command.
//
// Settings come from three sources, later ones overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. a TOML or YAML file, chosen by extension (Load)
//  3. OBSERVE_* environment variables (ApplyEnv)
//
// Example TOML file:
//
//	[log]
//	level = "debug"
//	format = "console"
//
//	[scripts]
//	paths = ["plugins/audit.lua"]
//	timeout = "2s"
//
//	[watch]
//	enabled = true
//	debounce = "150ms"
//
//	[metrics]
//	addr = ":9464"
//
//	[trace]
//	events = ["document.saved", "dict.users.changed"]
package config
