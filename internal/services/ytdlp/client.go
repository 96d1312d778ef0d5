package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ytsync/internal/config"
	"ytsync/internal/services"
	"ytsync/internal/textutil"
)

// exitAlreadyDownloaded is the yt-dlp exit code meaning the item already
// satisfies the download constraints. Treated as success: the tool
// detects duplicates by content, not filename.
const exitAlreadyDownloaded = 100

const maxOutputDetail = 2000

// Item is one entry of a remote playlist, in playlist order. Title is
// sanitized at ingestion so it can be compared against local filenames.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ExecResult captures a finished subprocess invocation. ExitCode is zero
// on success; a launch failure is reported through the error return of
// Executor.Run instead.
type ExecResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (ExecResult, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithVerbose passes -vU through to yt-dlp on fetches.
func WithVerbose(verbose bool) Option {
	return func(c *Client) {
		c.verbose = verbose
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary  string
	verbose bool
	exec    Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ytdlp binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PlaylistURL returns the canonical URL for a playlist identifier.
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}

// ItemURL returns the canonical URL for an item identifier.
func ItemURL(itemID string) string {
	return "https://www.youtube.com/watch?v=" + itemID
}

// ListPlaylist enumerates a remote playlist without downloading anything.
// The listing is all-or-nothing: a non-zero exit or a single malformed
// metadata line fails the whole call, since membership must be complete
// and order-correct for reconciliation.
func (c *Client) ListPlaylist(ctx context.Context, playlistID string) ([]Item, error) {
	args := []string{"-j", "--flat-playlist", PlaylistURL(playlistID)}

	result, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "list playlist", playlistID, err)
	}
	if result.ExitCode != 0 {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "list playlist",
			fmt.Sprintf("%s: exit code %d: %s", playlistID, result.ExitCode, outputDetail(result)), nil)
	}

	lines := bytes.Split(result.Stdout, []byte("\n"))
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "parse playlist metadata", playlistID, err)
		}
		item.Title = textutil.SanitizeFileName(item.Title)
		items = append(items, item)
	}
	return items, nil
}

// FetchItem materializes one remote item into destDir in the requested
// format. A nil return means the item is now present locally, including
// the case where yt-dlp reports it as already satisfied. No retry is
// performed here.
func (c *Client) FetchItem(ctx context.Context, itemID, destDir string, format config.MediaFormat) error {
	args := c.fetchArgs(itemID, destDir, format)

	result, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ytdlp", "fetch item", itemID, err)
	}
	if result.ExitCode != 0 && result.ExitCode != exitAlreadyDownloaded {
		return services.Wrap(services.ErrExternalTool, "ytdlp", "fetch item",
			fmt.Sprintf("%s: args %q: exit code %d: %s", itemID, args, result.ExitCode, outputDetail(result)), nil)
	}
	return nil
}

func (c *Client) fetchArgs(itemID, destDir string, format config.MediaFormat) []string {
	args := []string{
		"-P", destDir,
		"-q",
		"--embed-thumbnail",
		"--embed-metadata",
		ItemURL(itemID),
	}
	if format == config.FormatAudio {
		args = append(args, "-x", "--audio-format", "opus")
	} else {
		args = append(args, "-f", "bestvideo+bestaudio", "--merge-output-format", "mkv")
	}
	if c.verbose {
		args = append(args, "-vU")
	}
	return args
}

func outputDetail(result ExecResult) string {
	detail := strings.TrimSpace(string(result.Stderr))
	if detail == "" {
		detail = strings.TrimSpace(string(result.Stdout))
	}
	if len(detail) > maxOutputDetail {
		detail = detail[len(detail)-maxOutputDetail:]
	}
	if detail == "" {
		return "no output"
	}
	return detail
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (ExecResult, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ExecResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", binary, err)
	}
	return result, nil
}
