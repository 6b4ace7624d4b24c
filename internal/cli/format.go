package cli

import (
	"fmt"
	"time"

	"github.com/rvallade/maha/internal/catalog"
)

func formatTrack(t catalog.Track) string {
	artist := t.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}
	return fmt.Sprintf("%s - %s  [%s]", artist, t.Title, formatDuration(t.Duration))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
