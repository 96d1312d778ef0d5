package ytdlp_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ytsync/internal/config"
	"ytsync/internal/services"
	"ytsync/internal/services/ytdlp"
)

type fakeExecutor struct {
	result ytdlp.ExecResult
	err    error

	binary string
	args   []string
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) (ytdlp.ExecResult, error) {
	f.binary = binary
	f.args = args
	return f.result, f.err
}

func newClient(t *testing.T, exec ytdlp.Executor, opts ...ytdlp.Option) *ytdlp.Client {
	t.Helper()
	opts = append([]ytdlp.Option{ytdlp.WithExecutor(exec)}, opts...)
	client, err := ytdlp.New("yt-dlp", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestListPlaylistParsesOrderedItems(t *testing.T) {
	exec := &fakeExecutor{result: ytdlp.ExecResult{Stdout: []byte(
		`{"id":"aaa","title":"First Song"}` + "\n" +
			`{"id":"bbb","title":"Second / Song?"}` + "\n\n",
	)}}
	client := newClient(t, exec)

	items, err := client.ListPlaylist(context.Background(), "PLabc")
	if err != nil {
		t.Fatalf("ListPlaylist: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "aaa" || items[0].Title != "First Song" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	// Titles are sanitized at ingestion.
	if items[1].Title != "Second ⧸ Song？" {
		t.Fatalf("expected sanitized title, got %q", items[1].Title)
	}

	wantArgs := []string{"-j", "--flat-playlist", "https://www.youtube.com/playlist?list=PLabc"}
	if len(exec.args) != len(wantArgs) {
		t.Fatalf("unexpected args: %v", exec.args)
	}
	for i, arg := range wantArgs {
		if exec.args[i] != arg {
			t.Fatalf("arg %d: got %q want %q", i, exec.args[i], arg)
		}
	}
}

func TestListPlaylistFailsOnMalformedLine(t *testing.T) {
	exec := &fakeExecutor{result: ytdlp.ExecResult{Stdout: []byte(
		`{"id":"aaa","title":"ok"}` + "\n" + `{"id":` + "\n",
	)}}
	client := newClient(t, exec)

	if _, err := client.ListPlaylist(context.Background(), "PLabc"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool for malformed metadata, got %v", err)
	}
}

func TestListPlaylistFailsOnNonZeroExit(t *testing.T) {
	exec := &fakeExecutor{result: ytdlp.ExecResult{ExitCode: 1, Stderr: []byte("ERROR: playlist does not exist")}}
	client := newClient(t, exec)

	_, err := client.ListPlaylist(context.Background(), "PLmissing")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "playlist does not exist") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}

func TestListPlaylistFailsOnLaunchError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("executable file not found")}
	client := newClient(t, exec)

	if _, err := client.ListPlaylist(context.Background(), "PLabc"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestFetchItemAudioArgs(t *testing.T) {
	exec := &fakeExecutor{}
	client := newClient(t, exec)

	if err := client.FetchItem(context.Background(), "vid11111111", "/srv/music", config.FormatAudio); err != nil {
		t.Fatalf("FetchItem: %v", err)
	}

	got := strings.Join(exec.args, " ")
	want := "-P /srv/music -q --embed-thumbnail --embed-metadata https://www.youtube.com/watch?v=vid11111111 -x --audio-format opus"
	if got != want {
		t.Fatalf("unexpected args:\n got %q\nwant %q", got, want)
	}
}

func TestFetchItemVideoArgs(t *testing.T) {
	exec := &fakeExecutor{}
	client := newClient(t, exec)

	if err := client.FetchItem(context.Background(), "vid11111111", "/srv/clips", config.FormatVideo); err != nil {
		t.Fatalf("FetchItem: %v", err)
	}

	got := strings.Join(exec.args, " ")
	if !strings.Contains(got, "-f bestvideo+bestaudio --merge-output-format mkv") {
		t.Fatalf("expected video format args, got %q", got)
	}
	if strings.Contains(got, "-vU") {
		t.Fatalf("did not expect verbose args, got %q", got)
	}
}

func TestFetchItemVerboseArgs(t *testing.T) {
	exec := &fakeExecutor{}
	client := newClient(t, exec, ytdlp.WithVerbose(true))

	if err := client.FetchItem(context.Background(), "vid11111111", "/srv/music", config.FormatAudio); err != nil {
		t.Fatalf("FetchItem: %v", err)
	}
	if exec.args[len(exec.args)-1] != "-vU" {
		t.Fatalf("expected trailing -vU, got %v", exec.args)
	}
}

func TestFetchItemTreatsBenignExitAsSuccess(t *testing.T) {
	exec := &fakeExecutor{result: ytdlp.ExecResult{ExitCode: 100, Stderr: []byte("already downloaded")}}
	client := newClient(t, exec)

	if err := client.FetchItem(context.Background(), "vid11111111", "/srv/music", config.FormatAudio); err != nil {
		t.Fatalf("exit 100 should be success, got %v", err)
	}
}

func TestFetchItemReportsGenuineFailure(t *testing.T) {
	exec := &fakeExecutor{result: ytdlp.ExecResult{ExitCode: 2, Stderr: []byte("ERROR: video unavailable")}}
	client := newClient(t, exec)

	err := client.FetchItem(context.Background(), "vid11111111", "/srv/music", config.FormatAudio)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	for _, want := range []string{"vid11111111", "exit code 2", "video unavailable"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in diagnostic, got %v", want, err)
		}
	}
}
