package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/session"
)

type spyRecorder struct {
	mu    sync.Mutex
	plays []string
}

func (r *spyRecorder) RecordPlay(path string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, path)
	return nil
}

func (r *spyRecorder) Plays() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.plays))
	copy(out, r.plays)
	return out
}

func newTestController(t *testing.T, queue []catalog.Track, start int) (*Controller, *MockAdapter, *spyRecorder) {
	t.Helper()
	adapter := NewMockAdapter()
	rec := &spyRecorder{}
	sess := session.New(nil)
	ctrl := NewController(adapter, sess, rec, nil)
	t.Cleanup(func() { ctrl.Close() })

	if len(queue) > 0 {
		if err := ctrl.SetQueue(queue, start); err != nil {
			t.Fatalf("SetQueue: %v", err)
		}
	}
	return ctrl, adapter, rec
}

func trackList(paths ...string) []catalog.Track {
	out := make([]catalog.Track, len(paths))
	for i, p := range paths {
		out[i] = catalog.Track{Path: p, Title: p}
	}
	return out
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestController_SetQueueStartsPlayback(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)

	res := adapter.Resource(0)
	if res == nil || res.Path() != "/a" {
		t.Fatalf("expected /a to be opened, got %v", adapter.OpenPaths())
	}

	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return res.PlayCalls() == 1 }, "Play was not called after ready")
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "state did not become playing")
}

func TestController_EndedAdvancesToNextTrack(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)

	res0 := adapter.Resource(0)
	res0.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "first track not playing")

	res0.Emit(Event{Kind: EventEnded})
	eventually(t, func() bool { return len(adapter.OpenPaths()) == 2 }, "next track was not opened")

	if got := adapter.OpenPaths()[1]; got != "/b" {
		t.Errorf("opened %q, want /b", got)
	}
	eventually(t, func() bool { return res0.Closed() }, "previous resource not released")

	res1 := adapter.Resource(1)
	res1.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return res1.PlayCalls() == 1 }, "next track did not autoplay")
}

func TestController_EndOfQueueStopsExplicitly(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a"), 0)

	res := adapter.Resource(0)
	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	res.Emit(Event{Kind: EventEnded})
	eventually(t, func() bool { return ctrl.State() == StateStopped }, "state did not become stopped")

	// Index stays on the last track, the resource is released, and nothing
	// is reopened.
	if ctrl.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", ctrl.CurrentIndex())
	}
	if !res.Closed() {
		t.Error("resource should be released at end of queue")
	}
	if n := len(adapter.OpenPaths()); n != 1 {
		t.Errorf("opened %d resources, want 1", n)
	}
}

func TestController_RepeatOneRestartsSameResource(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)
	if err := ctrl.SetRepeatMode(session.RepeatOne); err != nil {
		t.Fatalf("SetRepeatMode: %v", err)
	}

	res := adapter.Resource(0)
	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return res.PlayCalls() == 1 }, "not playing")

	res.Emit(Event{Kind: EventEnded})
	eventually(t, func() bool { return res.PlayCalls() == 2 }, "track was not restarted")

	seeks := res.Seeks()
	if len(seeks) == 0 || seeks[len(seeks)-1] != 0 {
		t.Errorf("Seeks() = %v, want a seek to 0", seeks)
	}
	if n := len(adapter.OpenPaths()); n != 1 {
		t.Errorf("opened %d resources, want 1 (no reload under repeat-one)", n)
	}
}

func TestController_RepeatAllWrapsToFirstTrack(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 1)
	if err := ctrl.SetRepeatMode(session.RepeatAll); err != nil {
		t.Fatalf("SetRepeatMode: %v", err)
	}

	res := adapter.Resource(0)
	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	res.Emit(Event{Kind: EventEnded})
	eventually(t, func() bool { return len(adapter.OpenPaths()) == 2 }, "wrap did not reload")

	if got := adapter.OpenPaths(); got[0] != "/b" || got[1] != "/a" {
		t.Errorf("OpenPaths() = %v, want [/b /a]", got)
	}
	if ctrl.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", ctrl.CurrentIndex())
	}
}

func TestController_StaleEventsDiscarded(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b", "/c"), 0)

	res0 := adapter.Resource(0)
	res0.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	if err := ctrl.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	eventually(t, func() bool { return ctrl.CurrentIndex() == 1 }, "did not advance")

	// An end event from the replaced resource's generation must not advance
	// the queue again.
	ctrl.events <- genEvent{gen: 1, ev: Event{Kind: EventEnded}}
	time.Sleep(50 * time.Millisecond)

	if ctrl.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1 (stale event applied)", ctrl.CurrentIndex())
	}
	if n := len(adapter.OpenPaths()); n != 2 {
		t.Errorf("opened %d resources, want 2", n)
	}
}

func TestController_LoadErrorDoesNotAutoAdvance(t *testing.T) {
	adapter := NewMockAdapter()
	adapter.SetOpenError(errors.New("decode failed"))
	sess := session.New(nil)
	ctrl := NewController(adapter, sess, nil, nil)
	defer ctrl.Close()
	sub := ctrl.Subscribe()

	if err := ctrl.SetQueue(trackList("/a", "/b"), 0); err != nil {
		t.Fatalf("SetQueue: %v", err)
	}

	select {
	case e := <-sub.Error:
		if e.Op != "load" || e.Path != "/a" {
			t.Errorf("ErrorEvent = %+v, want load error for /a", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error event received")
	}

	if ctrl.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", ctrl.State())
	}
	// The index stays on the failed track; no skip to /b.
	if ctrl.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", ctrl.CurrentIndex())
	}
	if n := len(adapter.OpenPaths()); n != 1 {
		t.Errorf("opened %d resources, want 1 (no auto-advance on error)", n)
	}
}

func TestController_PlayErrorStops(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)
	sub := ctrl.Subscribe()

	res := adapter.Resource(0)
	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	res.Emit(Event{Kind: EventPlayError, Err: errors.New("device gone")})

	select {
	case e := <-sub.Error:
		if e.Op != "play" {
			t.Errorf("ErrorEvent.Op = %q, want play", e.Op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no error event received")
	}
	eventually(t, func() bool { return ctrl.State() == StateStopped }, "state did not become stopped")

	if n := len(adapter.OpenPaths()); n != 1 {
		t.Errorf("opened %d resources, want 1", n)
	}
}

func TestController_VolumeAmplification(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a"), 0)

	ctrl.SetVolume(0.5)
	ctrl.SetAmplification(150)
	if got := ctrl.EffectiveVolume(); got != 0.75 {
		t.Errorf("EffectiveVolume() = %v, want 0.75", got)
	}

	// The effective volume is capped at 1 however high the boost goes.
	ctrl.SetAmplification(300)
	if got := ctrl.EffectiveVolume(); got != 1.0 {
		t.Errorf("EffectiveVolume() = %v, want 1.0 (capped)", got)
	}

	res := adapter.Resource(0)
	vols := res.Volumes()
	if len(vols) == 0 || vols[len(vols)-1] != 1.0 {
		t.Errorf("Volumes() = %v, want live resource updated to 1.0", vols)
	}
}

func TestController_PlayedRecordedOncePerLoad(t *testing.T) {
	ctrl, adapter, rec := newTestController(t, trackList("/a", "/b"), 0)

	res0 := adapter.Resource(0)
	res0.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	// Pause and resume must not double-count.
	ctrl.Pause()
	eventually(t, func() bool { return ctrl.State() == StatePaused }, "not paused")
	if err := ctrl.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "did not resume")

	if got := rec.Plays(); len(got) != 1 || got[0] != "/a" {
		t.Errorf("Plays() = %v, want [/a]", got)
	}

	// Advancing to the next track records again.
	res0.Emit(Event{Kind: EventEnded})
	eventually(t, func() bool { return len(adapter.OpenPaths()) == 2 }, "did not advance")
	adapter.Resource(1).Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return len(rec.Plays()) == 2 }, "second play not recorded")

	if got := rec.Plays(); got[1] != "/b" {
		t.Errorf("Plays() = %v, want [/a /b]", got)
	}
}

func TestController_SetRateAppliedLive(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a"), 0)

	if err := ctrl.SetRate(1.5); err != nil {
		t.Fatalf("SetRate: %v", err)
	}

	res := adapter.Resource(0)
	rates := res.Rates()
	if len(rates) == 0 || rates[len(rates)-1] != 1.5 {
		t.Errorf("Rates() = %v, want live update to 1.5", rates)
	}
	if n := len(adapter.OpenPaths()); n != 1 {
		t.Errorf("opened %d resources, want 1 (no reload on rate change)", n)
	}

	// Non-positive rates are ignored.
	if err := ctrl.SetRate(0); err != nil {
		t.Fatalf("SetRate(0): %v", err)
	}
	rates = res.Rates()
	if rates[len(rates)-1] != 1.5 {
		t.Errorf("Rates() = %v, rate 0 should be ignored", rates)
	}
}

func TestController_RateSurvivesTrackChange(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)

	if err := ctrl.SetRate(2.0); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if err := ctrl.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	eventually(t, func() bool { return len(adapter.OpenPaths()) == 2 }, "did not advance")

	rates := adapter.Resource(1).Rates()
	if len(rates) == 0 || rates[len(rates)-1] != 2.0 {
		t.Errorf("Rates() = %v, want 2.0 applied to the new resource", rates)
	}
}

func TestController_RemoveCurrentReloadsSlot(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)

	res0 := adapter.Resource(0)
	res0.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	if err := ctrl.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	eventually(t, func() bool { return len(adapter.OpenPaths()) == 2 }, "slot track not loaded")

	if got := adapter.OpenPaths()[1]; got != "/b" {
		t.Errorf("opened %q, want /b", got)
	}
	if !res0.Closed() {
		t.Error("removed track's resource should be released")
	}
}

func TestController_RemoveLastTrackStops(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a"), 0)

	res := adapter.Resource(0)
	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	if err := ctrl.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	eventually(t, func() bool { return ctrl.State() == StateStopped }, "not stopped")

	if !res.Closed() {
		t.Error("resource should be released")
	}
	if ctrl.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", ctrl.CurrentIndex())
	}
}

func TestController_ClearQueueStops(t *testing.T) {
	ctrl, adapter, _ := newTestController(t, trackList("/a", "/b"), 0)

	res := adapter.Resource(0)
	res.Emit(Event{Kind: EventReady})
	eventually(t, func() bool { return ctrl.State() == StatePlaying }, "not playing")

	if err := ctrl.ClearQueue(); err != nil {
		t.Fatalf("ClearQueue: %v", err)
	}
	eventually(t, func() bool { return ctrl.State() == StateStopped }, "not stopped")

	if len(ctrl.Queue()) != 0 {
		t.Error("queue should be empty")
	}
	if !res.Closed() {
		t.Error("resource should be released")
	}
}

func TestController_TrackChangeEvents(t *testing.T) {
	adapter := NewMockAdapter()
	sess := session.New(nil)
	ctrl := NewController(adapter, sess, nil, nil)
	defer ctrl.Close()
	sub := ctrl.Subscribe()

	if err := ctrl.SetQueue(trackList("/a", "/b"), 0); err != nil {
		t.Fatalf("SetQueue: %v", err)
	}

	select {
	case e := <-sub.TrackChanged:
		if e.Current == nil || e.Current.Path != "/a" {
			t.Errorf("TrackChange.Current = %v, want /a", e.Current)
		}
		if e.Previous != nil || e.PreviousIndex != -1 {
			t.Errorf("TrackChange previous = (%v, %d), want (nil, -1)", e.Previous, e.PreviousIndex)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no track change received")
	}

	if err := ctrl.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	select {
	case e := <-sub.TrackChanged:
		if e.Current == nil || e.Current.Path != "/b" {
			t.Errorf("TrackChange.Current = %v, want /b", e.Current)
		}
		if e.Previous == nil || e.Previous.Path != "/a" {
			t.Errorf("TrackChange.Previous = %v, want /a", e.Previous)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no track change received")
	}
}

func TestController_CloseIsIdempotent(t *testing.T) {
	adapter := NewMockAdapter()
	ctrl := NewController(adapter, session.New(nil), nil, nil)
	sub := ctrl.Subscribe()

	if err := ctrl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ctrl.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
}
