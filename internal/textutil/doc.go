// Package textutil provides filename sanitization shared by playlist
// listing and local directory scanning. Both sides must normalize names
// through the same table or membership comparison diverges.
package textutil
