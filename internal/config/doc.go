// Package config loads Gridstorm settings.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← GRIDSTORM_SECTION_SETTING
//	├─────────────────────────────┤
//	│  2. Config File             │  ← .toml, .yaml or .yml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Layers are merged as generic maps and then decoded into the typed Config.
// Command-line flags are applied by the caller on top of the result.
//
// # Basic Usage
//
//	cfg, err := config.Load("gridstorm.toml")
//	if err != nil {
//	    return err
//	}
//	opts, err := cfg.DocumentOptions(slog.Default())
//	if err != nil {
//	    return err
//	}
//	doc := engine.New(opts...)
//
// # File Format
//
//	[document]
//	delimiter = ";"
//	encoding = "utf-8"
//	lineEnding = "crlf"
//	maxUndoEntries = 100
//
//	[logging]
//	level = "debug"
//	format = "json"
//
//	[export]
//	format = "markdown"
package config
