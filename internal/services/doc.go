// Package services provides shared error classification helpers for the
// external collaborators ytsync drives (the acquisition tool, the local
// filesystem, the configuration file).
package services
