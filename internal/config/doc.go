// Package config loads structedit settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A configuration file, TOML (.toml) or YAML (.yaml, .yml)
//  3. STRUCTEDIT_* environment variables
//
// A missing configuration file is not an error. Unknown keys are rejected so
// that typos do not silently fall back to defaults.
//
// Example file:
//
//	[editor]
//	max_undo_entries = 500
//	read_only = false
//
//	[whitespace]
//	preserve = ["pre", "code"]
//
//	[log]
//	level = "debug"
//
//	[script]
//	call_limit = 100000
//	timeout = "2s"
package config
