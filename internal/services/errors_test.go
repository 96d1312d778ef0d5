package services_test

import (
	"errors"
	"strings"
	"testing"

	"ytsync/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "ytdlp", "list playlist", "PL123", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker in %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved in %v", err)
	}
	for _, want := range []string{"ytdlp", "list playlist", "PL123"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO fallback, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %v", err)
	}
}
