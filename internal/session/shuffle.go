package session

import (
	"math/rand"

	"github.com/rvallade/maha/internal/catalog"
)

// shuffled returns a uniform random permutation of tracks (Fisher-Yates).
// The input slice is left untouched.
func shuffled(rng *rand.Rand, tracks []catalog.Track) []catalog.Track {
	out := make([]catalog.Track, len(tracks))
	copy(out, tracks)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
