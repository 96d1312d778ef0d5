// Package ytdlp wraps yt-dlp CLI interactions: metadata-only playlist
// enumeration and single-item fetches. Command execution sits behind an
// Executor interface so the sync engine can be tested without spawning
// any real subprocess.
package ytdlp
