//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("expected at least one config path")
	}
	// The working-directory config always comes last so it wins.
	if paths[len(paths)-1] != "config.toml" {
		t.Errorf("last path = %q, want config.toml", paths[len(paths)-1])
	}
}

func TestGetPlaybackConfig_Defaults(t *testing.T) {
	cfg := &Config{}

	pb := cfg.GetPlaybackConfig()
	if pb.Volume != 1.0 {
		t.Errorf("Volume = %v, want 1.0", pb.Volume)
	}
	if pb.Amplification != 100 {
		t.Errorf("Amplification = %d, want 100", pb.Amplification)
	}
}

func TestGetPlaybackConfig_ClampsInvalid(t *testing.T) {
	cfg := &Config{Playback: PlaybackConfig{Volume: 3.0, Amplification: 9000}}

	pb := cfg.GetPlaybackConfig()
	if pb.Volume != 1.0 {
		t.Errorf("Volume = %v, want 1.0", pb.Volume)
	}
	if pb.Amplification != 100 {
		t.Errorf("Amplification = %d, want 100", pb.Amplification)
	}
}

func TestGetPlaybackConfig_KeepsValid(t *testing.T) {
	cfg := &Config{Playback: PlaybackConfig{Volume: 0.6, Amplification: 200}}

	pb := cfg.GetPlaybackConfig()
	if pb.Volume != 0.6 {
		t.Errorf("Volume = %v, want 0.6", pb.Volume)
	}
	if pb.Amplification != 200 {
		t.Errorf("Amplification = %d, want 200", pb.Amplification)
	}
}
