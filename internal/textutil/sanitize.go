package textutil

import "strings"

// fileNameReplacer substitutes characters that are illegal or unsafe in
// filenames on common filesystems. The replacements match what yt-dlp
// itself writes, so a name computed from playlist metadata is byte-equal
// to the name the tool produces on disk. Fullwidth substitutes map to
// themselves, which keeps the function idempotent.
var fileNameReplacer = strings.NewReplacer(
	"<", "＂",
	">", "＂",
	":", "＂",
	"\"", "＂",
	"\\", "＂",
	"|", "＂",
	"*", "＂",
	"“", "＂",
	"”", "＂",
	"?", "？",
	"/", "⧸",
)

// SanitizeFileName replaces filesystem-unsafe characters in a name with
// the acquisition tool's substitution characters. It is pure and total;
// applying it to an already-sanitized name is a no-op.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}
