package audio

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/session"
)

// pollInterval is the cadence of the position poll loop.
const pollInterval = 100 * time.Millisecond

// StatsRecorder is notified when playback of a track starts. "Played" means
// playback start was observed, not completion.
type StatsRecorder interface {
	RecordPlay(path string, at time.Time) error
}

// Controller synchronizes the playback session with the audio adapter. It
// owns at most one live resource; every loaded resource gets a new
// generation number and events from replaced resources are discarded.
type Controller struct {
	mu sync.Mutex

	adapter Adapter
	sess    *session.Session
	stats   StatsRecorder
	log     *zap.Logger

	res         Resource
	gen         int64
	state       State
	pendingPlay bool
	playedMark  bool // play already recorded for this generation

	userVolume    float64
	amplification float64 // percent
	rate          float64

	lastTrack *catalog.Track
	lastIndex int

	pollStop chan struct{}

	events chan genEvent

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// genEvent tags an adapter event with the generation of the resource that
// produced it.
type genEvent struct {
	gen int64
	ev  Event
}

// NewController creates a controller over the given adapter and session.
// stats may be nil; a nil logger disables logging.
func NewController(adapter Adapter, sess *session.Session, stats StatsRecorder, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		adapter:       adapter,
		sess:          sess,
		stats:         stats,
		log:           log,
		userVolume:    1.0,
		amplification: 100,
		rate:          sess.PlaybackRate(),
		lastIndex:     -1,
		events:        make(chan genEvent, 32),
		done:          make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Controller) run() {
	for {
		select {
		case e := <-c.events:
			c.handleEvent(e)
		case <-c.done:
			return
		}
	}
}

func (c *Controller) handleEvent(e genEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.gen != c.gen || c.res == nil {
		// Stale event from an already-replaced resource.
		return
	}

	switch e.ev.Kind {
	case EventReady:
		if c.pendingPlay {
			c.pendingPlay = false
			c.res.Play()
		}
	case EventPlaying:
		c.setStateLocked(StatePlaying)
		c.startPollLocked()
		if !c.playedMark {
			c.playedMark = true
			c.recordPlayLocked()
		}
	case EventPaused:
		c.setStateLocked(StatePaused)
		c.stopPollLocked()
	case EventEnded:
		c.stopPollLocked()
		c.advanceLocked()
	case EventLoadError:
		c.stopPollLocked()
		c.setStateLocked(StateStopped)
		c.sendError(ErrorEvent{Op: "load", Path: c.currentPathLocked(), Err: e.ev.Err})
	case EventPlayError:
		c.stopPollLocked()
		c.setStateLocked(StateStopped)
		c.sendError(ErrorEvent{Op: "play", Path: c.currentPathLocked(), Err: e.ev.Err})
	}
}

// advanceLocked reacts to a finished track: advance the session and load
// the new current track, restart under repeat-one, or stop explicitly at
// the end of the queue.
func (c *Controller) advanceLocked() {
	adv, err := c.sess.Next()
	if err != nil {
		c.sendError(ErrorEvent{Op: "persist", Err: err})
	}
	switch adv {
	case session.AdvanceMoved:
		c.loadCurrentLocked(true)
	case session.AdvanceRestart:
		c.res.Seek(0)
		c.res.Play()
	case session.AdvanceEnd:
		// Explicit terminal state: the index stays on the last track but
		// playback stops and the resource is released.
		c.releaseLocked()
		c.setStateLocked(StateStopped)
	}
}

// loadCurrentLocked releases the previous resource, opens the session's
// current track under a fresh generation, and optionally starts playback
// once the resource reports ready. Load failures surface as error events
// and never auto-advance.
func (c *Controller) loadCurrentLocked(autoplay bool) {
	c.releaseLocked()

	cur := c.sess.Current()
	if cur == nil {
		c.setStateLocked(StateStopped)
		return
	}

	c.gen++
	c.playedMark = false
	c.pendingPlay = autoplay

	res, err := c.adapter.Open(cur.Path)
	if err != nil {
		c.pendingPlay = false
		c.setStateLocked(StateStopped)
		c.sendError(ErrorEvent{Op: "load", Path: cur.Path, Err: err})
		return
	}
	c.res = res
	res.SetVolume(c.effectiveVolumeLocked())
	res.SetRate(c.rate)
	go c.forward(c.gen, res.Events())

	index := c.sess.CurrentIndex()
	c.sendTrack(TrackChange{
		Previous:      c.lastTrack,
		Current:       cur,
		PreviousIndex: c.lastIndex,
		Index:         index,
	})
	c.lastTrack = cur
	c.lastIndex = index
}

// forward relays one resource's events into the controller loop, tagged
// with that resource's generation.
func (c *Controller) forward(gen int64, ch <-chan Event) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			select {
			case c.events <- genEvent{gen: gen, ev: ev}:
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Controller) releaseLocked() {
	c.stopPollLocked()
	c.pendingPlay = false
	if c.res != nil {
		c.res.Close()
		c.res = nil
	}
}

func (c *Controller) startPollLocked() {
	c.stopPollLocked()
	stop := make(chan struct{})
	c.pollStop = stop
	res, gen := c.res, c.gen

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				stale := gen != c.gen
				c.mu.Unlock()
				if stale {
					return
				}
				c.sendPosition(PositionChange{Position: res.Position(), Duration: res.Duration()})
			case <-stop:
				return
			case <-c.done:
				return
			}
		}
	}()
}

func (c *Controller) stopPollLocked() {
	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
}

func (c *Controller) recordPlayLocked() {
	if c.stats == nil {
		return
	}
	cur := c.sess.Current()
	if cur == nil {
		return
	}
	if err := c.stats.RecordPlay(cur.Path, time.Now()); err != nil {
		c.log.Warn("recording play failed", zap.String("path", cur.Path), zap.Error(err))
	}
}

func (c *Controller) setStateLocked(next State) {
	if c.state == next {
		return
	}
	prev := c.state
	c.state = next
	c.sendStateChange(StateChange{Previous: prev, Current: next})
}

func (c *Controller) currentPathLocked() string {
	if cur := c.sess.Current(); cur != nil {
		return cur.Path
	}
	return ""
}

func (c *Controller) effectiveVolumeLocked() float64 {
	v := c.userVolume * c.amplification / 100
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// SetQueue replaces the queue and starts playback of the current track.
func (c *Controller) SetQueue(tracks []catalog.Track, startIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sess.SetQueue(tracks, startIndex); err != nil {
		return err
	}
	c.sendQueueLocked()
	c.loadCurrentLocked(true)
	return nil
}

// Play starts or resumes playback. With nothing loaded it loads the
// session's current track, selecting the first queue entry if necessary.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.res != nil && c.state == StatePaused {
		c.res.Play()
		return nil
	}
	if c.res != nil && c.state == StatePlaying {
		return nil
	}
	if c.sess.Current() == nil {
		if c.sess.IsEmpty() {
			return nil
		}
		if err := c.sess.SelectIndex(0); err != nil {
			return err
		}
	}
	c.loadCurrentLocked(true)
	return nil
}

// Pause pauses playback.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.res != nil && c.state == StatePlaying {
		c.res.Pause()
	}
}

// Toggle switches between playing and paused.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	playing := c.state == StatePlaying
	c.mu.Unlock()
	if playing {
		c.Pause()
		return nil
	}
	return c.Play()
}

// Next advances to the next track per the repeat mode and plays it. At the
// end of the queue with repeat off playback stops explicitly.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	adv, err := c.sess.Next()
	if err != nil {
		return err
	}
	switch adv {
	case session.AdvanceMoved:
		c.loadCurrentLocked(true)
	case session.AdvanceRestart:
		if c.res != nil {
			c.res.Seek(0)
			c.res.Play()
		} else {
			c.loadCurrentLocked(true)
		}
	case session.AdvanceEnd:
		c.releaseLocked()
		c.setStateLocked(StateStopped)
	}
	return nil
}

// Previous moves back one track and plays it.
func (c *Controller) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.sess.CurrentIndex()
	if err := c.sess.Previous(); err != nil {
		return err
	}
	if c.sess.CurrentIndex() != before {
		c.loadCurrentLocked(true)
	}
	return nil
}

// SelectIndex jumps to a queue position and plays it. Out of range is a
// no-op.
func (c *Controller) SelectIndex(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.sess.CurrentIndex()
	if err := c.sess.SelectIndex(index); err != nil {
		return err
	}
	if c.sess.CurrentIndex() != before || c.res == nil {
		c.loadCurrentLocked(true)
	}
	return nil
}

// SelectTrack plays the given track, appending it to the queue if its
// identity is not already queued.
func (c *Controller) SelectTrack(t catalog.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.sess.SelectTrack(t); err != nil {
		return err
	}
	c.sendQueueLocked()
	c.loadCurrentLocked(true)
	return nil
}

// Append adds tracks to the end of the queue.
func (c *Controller) Append(tracks ...catalog.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sess.Append(tracks...); err != nil {
		return err
	}
	c.sendQueueLocked()
	return nil
}

// InsertAfterCurrent queues tracks to play next.
func (c *Controller) InsertAfterCurrent(tracks ...catalog.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sess.InsertAfterCurrent(tracks...); err != nil {
		return err
	}
	c.sendQueueLocked()
	return nil
}

// RemoveAt removes a queue entry. Removing the playing track reloads
// whatever slid into its slot; emptying the queue stops playback.
func (c *Controller) RemoveAt(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasCurrent := index == c.sess.CurrentIndex()
	wasActive := c.state != StateStopped
	ok, err := c.sess.RemoveAt(index)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	c.sendQueueLocked()
	if c.sess.IsEmpty() {
		c.releaseLocked()
		c.setStateLocked(StateStopped)
		return nil
	}
	if wasCurrent && wasActive {
		c.loadCurrentLocked(true)
	}
	return nil
}

// Reorder moves a queue entry to a new position.
func (c *Controller) Reorder(fromIndex, toIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.sess.Reorder(fromIndex, toIndex); err != nil {
		return err
	}
	c.sendQueueLocked()
	return nil
}

// ClearQueue empties the queue and stops playback.
func (c *Controller) ClearQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sess.Clear(); err != nil {
		return err
	}
	c.releaseLocked()
	c.setStateLocked(StateStopped)
	c.lastTrack = nil
	c.lastIndex = -1
	c.sendQueueLocked()
	return nil
}

// Seek moves the playback position of the loaded resource.
func (c *Controller) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.res == nil {
		return
	}
	c.res.Seek(pos)
	c.sendPosition(PositionChange{Position: pos, Duration: c.res.Duration()})
}

// SetVolume sets the user volume (0.0 to 1.0). The effective output volume
// is min(1, volume x amplification/100), re-applied to the live resource
// without reloading it.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.userVolume = v
	c.applyVolumeLocked()
}

// SetAmplification sets the amplification percentage (100 = unity).
func (c *Controller) SetAmplification(percent float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	c.amplification = percent
	c.applyVolumeLocked()
}

func (c *Controller) applyVolumeLocked() {
	if c.res != nil {
		c.res.SetVolume(c.effectiveVolumeLocked())
	}
}

// Volume returns the user volume level.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userVolume
}

// EffectiveVolume returns the volume actually applied to the renderer.
func (c *Controller) EffectiveVolume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveVolumeLocked()
}

// SetRate changes the playback speed. The live resource picks it up without
// reloading.
func (c *Controller) SetRate(rate float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rate <= 0 {
		return nil
	}
	if err := c.sess.SetPlaybackRate(rate); err != nil {
		return err
	}
	c.rate = rate
	if c.res != nil {
		c.res.SetRate(rate)
	}
	c.sendModeLocked()
	return nil
}

// SetRepeatMode changes the repeat mode without touching the loaded
// resource.
func (c *Controller) SetRepeatMode(mode session.RepeatMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sess.SetRepeatMode(mode); err != nil {
		return err
	}
	c.sendModeLocked()
	return nil
}

// ToggleShuffle flips shuffle mode. The playing track keeps playing; only
// queue order changes.
func (c *Controller) ToggleShuffle() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	on, err := c.sess.ToggleShuffle()
	if err != nil {
		return on, err
	}
	c.lastIndex = c.sess.CurrentIndex()
	c.sendModeLocked()
	c.sendQueueLocked()
	return on, nil
}

// State returns the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns the playback position of the loaded resource.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	res := c.res
	c.mu.Unlock()
	if res == nil {
		return 0
	}
	return res.Position()
}

// Duration returns the duration of the loaded resource.
func (c *Controller) Duration() time.Duration {
	c.mu.Lock()
	res := c.res
	c.mu.Unlock()
	if res == nil {
		return 0
	}
	return res.Duration()
}

// Current returns the session's current track.
func (c *Controller) Current() *catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Current()
}

// Queue returns a copy of the live queue.
func (c *Controller) Queue() []catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Tracks()
}

// CurrentIndex returns the live queue position.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.CurrentIndex()
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close releases the loaded resource and shuts the controller down.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.releaseLocked()
	close(c.done)
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	return c.adapter.Close()
}

func (c *Controller) sendQueueLocked() {
	e := QueueChange{Tracks: c.sess.Tracks(), Index: c.sess.CurrentIndex()}
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendQueue(e)
	}
}

func (c *Controller) sendModeLocked() {
	e := ModeChange{Repeat: c.sess.Repeat(), Shuffle: c.sess.Shuffle(), Rate: c.sess.PlaybackRate()}
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendMode(e)
	}
}

func (c *Controller) sendStateChange(e StateChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(e)
	}
}

func (c *Controller) sendTrack(e TrackChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendTrack(e)
	}
}

func (c *Controller) sendPosition(e PositionChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendPosition(e)
	}
}

func (c *Controller) sendError(e ErrorEvent) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(e)
	}
}
