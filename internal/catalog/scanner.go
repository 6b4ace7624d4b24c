package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"go.uber.org/zap"
)

var musicExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// IsMusicFile returns true if the path has a playable audio extension.
func IsMusicFile(path string) bool {
	return musicExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanResult is the aggregate outcome of a folder scan. Individual file
// failures do not abort the scan; they are counted and reported here once.
type ScanResult struct {
	Tracks   []Track
	Skipped  int // files that could not be opened at all
	Untagged int // files included with filename-derived metadata
}

// Scanner reads track metadata from a music folder.
type Scanner struct {
	log *zap.Logger
}

// NewScanner creates a scanner. A nil logger disables logging.
func NewScanner(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log}
}

// Scan walks folder recursively and returns all readable music tracks,
// sorted by path for consistent ordering. Unreadable files are skipped and
// counted; a tag-less file is still included with a title derived from its
// filename. The scan aborts only if the folder itself is unreadable or the
// context is cancelled.
func (s *Scanner) Scan(ctx context.Context, folder string) (ScanResult, error) {
	var res ScanResult

	if _, err := os.Stat(folder); err != nil {
		return res, err
	}

	err := filepath.WalkDir(folder, func(path string, d os.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				// Unreadable subdirectory: skip it, keep scanning.
				s.log.Warn("skipping unreadable directory", zap.String("path", path), zap.Error(walkErr))
				return filepath.SkipDir
			}
			res.Skipped++
			return nil
		}
		if d.IsDir() || !IsMusicFile(path) {
			return nil
		}

		t, err := s.readTrack(path)
		if err != nil {
			res.Skipped++
			s.log.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if t.Artist == "" && t.Album == "" {
			res.Untagged++
		}
		res.Tracks = append(res.Tracks, t)
		return nil
	})
	if err != nil {
		return res, err
	}

	sort.Slice(res.Tracks, func(i, j int) bool {
		return res.Tracks[i].Path < res.Tracks[j].Path
	})
	return res, nil
}

// readTrack builds a Track from a file's tags. Tag failures fall back to
// filename-derived metadata; only an unopenable file is an error.
func (s *Scanner) readTrack(path string) (Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return Track{}, err
	}
	defer f.Close()

	t := Track{Path: path}
	if info, err := f.Stat(); err == nil {
		t.DateAddedAt = info.ModTime()
	}

	if d, err := probeDuration(path); err == nil {
		t.Duration = d
	} else {
		s.log.Debug("could not determine duration", zap.String("path", path), zap.Error(err))
	}

	m, err := tag.ReadFrom(f)
	if err != nil {
		t.Title = titleFromPath(path)
		return t, nil
	}

	t.Title = m.Title()
	if t.Title == "" {
		t.Title = titleFromPath(path)
	}
	t.Artist = m.Artist()
	t.Album = m.Album()
	t.Genre = m.Genre()
	t.Year = m.Year()
	return t, nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
