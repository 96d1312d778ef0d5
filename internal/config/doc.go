// Package config loads, validates, and persists ytsync configuration.
//
// Configuration lives in a TOML file (default ~/.config/ytsync/config.toml)
// holding global settings plus the list of sync targets: one remote
// playlist mapped to one local directory with a media format and an
// optional m3u index. A sample file is written on first run.
package config
