package config

const (
	defaultStateDir    = "~/.local/share/ytsync"
	defaultYtdlpBinary = "yt-dlp"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Ytdlp: Ytdlp{
			Binary: defaultYtdlpBinary,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
