package session

import (
	"math/rand"
	"testing"
)

func TestShuffled_Permutation(t *testing.T) {
	in := tracks("/a", "/b", "/c", "/d", "/e", "/f")
	out := shuffled(rand.New(rand.NewSource(3)), in)

	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	assertSameTracks(t, out, in)

	// Input is left untouched.
	if in[0].Path != "/a" || in[5].Path != "/f" {
		t.Error("shuffled must not mutate its input")
	}
}

func TestShuffled_Deterministic(t *testing.T) {
	in := tracks("/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h")

	a := shuffled(rand.New(rand.NewSource(9)), in)
	b := shuffled(rand.New(rand.NewSource(9)), in)

	for i := range a {
		if a[i].Path != b[i].Path {
			t.Fatalf("same seed produced different permutations at %d", i)
		}
	}
}

func TestShuffled_Empty(t *testing.T) {
	out := shuffled(rand.New(rand.NewSource(1)), nil)
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}
