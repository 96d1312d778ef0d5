package config

import "fmt"

// MediaFormat selects how the acquisition tool materializes an item.
type MediaFormat string

const (
	// FormatAudio extracts audio into an opus file.
	FormatAudio MediaFormat = "audio"
	// FormatVideo merges best video and audio into an mkv container.
	FormatVideo MediaFormat = "video"
)

// ParseMediaFormat converts a string to a MediaFormat. Unknown values are
// rejected rather than silently treated as video.
func ParseMediaFormat(value string) (MediaFormat, error) {
	switch MediaFormat(value) {
	case FormatAudio:
		return FormatAudio, nil
	case FormatVideo:
		return FormatVideo, nil
	default:
		return "", fmt.Errorf("unknown media format %q (expected %q or %q)", value, FormatAudio, FormatVideo)
	}
}

// Extension returns the file extension the acquisition tool produces for
// this format, without the leading dot.
func (f MediaFormat) Extension() string {
	if f == FormatAudio {
		return "opus"
	}
	return "mkv"
}
