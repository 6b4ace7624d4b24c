package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// beepAdapter renders audio through the beep speaker. The speaker is
// initialized once with the sample rate of the first opened track; later
// tracks with a different rate are resampled.
type beepAdapter struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	initialized bool
}

// NewBeepAdapter creates the real audio output adapter.
func NewBeepAdapter() Adapter {
	return &beepAdapter{}
}

func (a *beepAdapter) Open(path string) (Resource, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	a.mu.Lock()
	if !a.initialized {
		a.sampleRate = format.SampleRate
		if err := speaker.Init(a.sampleRate, a.sampleRate.N(time.Second/10)); err != nil {
			a.mu.Unlock()
			streamer.Close()
			f.Close()
			return nil, err
		}
		a.initialized = true
	}
	speakerRate := a.sampleRate
	a.mu.Unlock()

	baseRatio := float64(format.SampleRate) / float64(speakerRate)
	resampler := beep.ResampleRatio(4, baseRatio, streamer)
	ctrl := &beep.Ctrl{Streamer: resampler, Paused: true}
	volume := &effects.Volume{Streamer: ctrl, Base: 2, Volume: 0, Silent: false}

	r := &beepResource{
		streamer:  streamer,
		format:    format,
		file:      f,
		ctrl:      ctrl,
		volume:    volume,
		resampler: resampler,
		baseRatio: baseRatio,
		events:    make(chan Event, 8),
	}

	// The callback runs on the speaker goroutine with the speaker mutex
	// held, while every resource method takes r.mu before speaker.Lock().
	// It must therefore never touch r.mu itself.
	speaker.Play(beep.Seq(volume, beep.Callback(r.signalEnded)))

	r.emit(Event{Kind: EventReady})
	return r, nil
}

func (a *beepAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		speaker.Clear()
	}
	return nil
}

type beepResource struct {
	mu        sync.Mutex
	streamer  beep.StreamSeekCloser
	format    beep.Format
	file      *os.File
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	resampler *beep.Resampler
	baseRatio float64
	events    chan Event
	closed    bool
}

func (r *beepResource) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	r.ctrl.Paused = false
	speaker.Unlock()
	r.emitLocked(Event{Kind: EventPlaying})
}

func (r *beepResource) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	r.ctrl.Paused = true
	speaker.Unlock()
	r.emitLocked(Event{Kind: EventPaused})
}

func (r *beepResource) Seek(pos time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	err := r.streamer.Seek(r.format.SampleRate.N(pos))
	speaker.Unlock()
	if err != nil {
		r.emitLocked(Event{Kind: EventPlayError, Err: err})
	}
}

func (r *beepResource) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	speaker.Lock()
	r.volume.Volume = levelToVolume(v)
	r.volume.Silent = v <= 0
	speaker.Unlock()
}

func (r *beepResource) SetRate(rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || rate <= 0 {
		return
	}
	speaker.Lock()
	r.resampler.SetRatio(r.baseRatio * rate)
	speaker.Unlock()
}

func (r *beepResource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	speaker.Lock()
	pos := r.format.SampleRate.D(r.streamer.Position())
	speaker.Unlock()
	return pos
}

func (r *beepResource) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	speaker.Lock()
	d := r.format.SampleRate.D(r.streamer.Len())
	speaker.Unlock()
	return d
}

func (r *beepResource) Events() <-chan Event {
	return r.events
}

func (r *beepResource) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	speaker.Clear()
	r.streamer.Close()
	r.file.Close()
	close(r.events)
}

// signalEnded hands the end-of-track event off to a fresh goroutine. It is
// safe to call from the speaker goroutine: it acquires no locks, so it
// cannot invert the r.mu before speaker-mutex order the other methods use.
func (r *beepResource) signalEnded() {
	go r.emit(Event{Kind: EventEnded})
}

func (r *beepResource) emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitLocked(e)
}

func (r *beepResource) emitLocked(e Event) {
	if r.closed {
		return
	}
	select {
	case r.events <- e:
	default:
	}
}

// levelToVolume converts a 0.0-1.0 level to beep's logarithmic volume,
// where 0 means unity, -1 half, -2 quarter. Levels at or below zero map to
// an effectively silent floor.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
