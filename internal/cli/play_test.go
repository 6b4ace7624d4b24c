package cli

import (
	"testing"
	"time"

	"github.com/rvallade/maha/internal/audio"
	"github.com/rvallade/maha/internal/catalog"
)

func TestPlaybackFinished(t *testing.T) {
	tests := []struct {
		name string
		e    audio.StateChange
		want bool
	}{
		{"stopped", audio.StateChange{Previous: audio.StatePlaying, Current: audio.StateStopped}, true},
		{"playing", audio.StateChange{Previous: audio.StateStopped, Current: audio.StatePlaying}, false},
		{"paused", audio.StateChange{Previous: audio.StatePlaying, Current: audio.StatePaused}, false},
		// Only the new state matters, not what it transitioned from.
		{"resumed after stop", audio.StateChange{Previous: audio.StateStopped, Current: audio.StatePlaying}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := playbackFinished(tt.e); got != tt.want {
				t.Errorf("playbackFinished(%v -> %v) = %v, want %v", tt.e.Previous, tt.e.Current, got, tt.want)
			}
		})
	}
}

func TestFormatTrack(t *testing.T) {
	tr := catalog.Track{Title: "Blue in Green", Artist: "Miles Davis", Duration: 337 * time.Second}
	if got, want := formatTrack(tr), "Miles Davis - Blue in Green  [5:37]"; got != want {
		t.Errorf("formatTrack() = %q, want %q", got, want)
	}

	tr = catalog.Track{Title: "untitled", Duration: 61 * time.Second}
	if got, want := formatTrack(tr), "Unknown Artist - untitled  [1:01]"; got != want {
		t.Errorf("formatTrack() = %q, want %q", got, want)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{60 * time.Second, "1:00"},
		{3599 * time.Second, "59:59"},
		{3600 * time.Second, "60:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
