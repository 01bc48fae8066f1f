// Package session owns the in-memory state of one shared view: events,
// highlights, feelings, the selected day and the active user. It runs the
// periodic display refreshes and keeps the remote bridge in step.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/duosync/backend/internal/activity"
	"github.com/duosync/backend/internal/bridge"
	"github.com/duosync/backend/internal/journal"
	"github.com/duosync/backend/internal/storage/models"
	"github.com/duosync/backend/internal/timeline"
	"github.com/duosync/backend/internal/timeutil"
)

const (
	// DefaultScrollDelay is how long after a day change the scroll target is sent.
	DefaultScrollDelay = 100 * time.Millisecond
	// DefaultPullSpec is the cron spec of the periodic bridge pull.
	DefaultPullSpec = "@every 30s"

	pushTimeout = 30 * time.Second
)

// refreshSpec drives the clock and marker refreshes.
var refreshSpec = "@every 1m"

// Bridge is the remote shared-state store.
type Bridge interface {
	Push(ctx context.Context, data models.SharedData) error
	Fetch(ctx context.Context) (*models.SharedData, error)
}

// Broadcaster receives derived display state for connected clients.
type Broadcaster interface {
	BroadcastClockTick(clock timeline.Clock)
	BroadcastMarker(offset float64, slot int, today bool)
	BroadcastScroll(offset float64, dateKey string)
	BroadcastStateChanged(reason string)
	BroadcastBridgeFailure(op string, err error)
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Names       models.Names
	ScrollDelay time.Duration
	// PullSpec is a cron spec; empty disables the periodic pull.
	PullSpec string
	Now      func() time.Time
}

// PullResult summarizes one bridge pull.
type PullResult struct {
	Merged        bool `json:"merged"`
	NewEvents     int  `json:"new_events"`
	NewFeelings   int  `json:"new_feelings"`
	NewHighlights int  `json:"new_highlights"`
}

// Session is safe for concurrent use.
type Session struct {
	engine      *timeline.Engine
	bridge      Bridge
	broadcaster Broadcaster
	now         func() time.Time
	scrollDelay time.Duration
	pullSpec    string
	cron        *cron.Cron

	mu          sync.Mutex
	events      []models.CalendarEvent
	highlights  map[string]models.DailyHighlight
	feelings    []models.DailyFeeling
	names       models.Names
	active      models.UserID
	selected    time.Time
	scrollTimer *time.Timer
	scrollGen   uint64

	// pushMu guards the push queue. It is taken after mu, never before.
	pushMu      sync.Mutex
	pendingPush *models.SharedData
	pushing     bool
	pushes      sync.WaitGroup
}

// New creates a session. bridge and broadcaster may be nil.
func New(engine *timeline.Engine, b Bridge, broadcaster Broadcaster, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ScrollDelay <= 0 {
		opts.ScrollDelay = DefaultScrollDelay
	}

	return &Session{
		engine:      engine,
		bridge:      b,
		broadcaster: broadcaster,
		now:         opts.Now,
		scrollDelay: opts.ScrollDelay,
		pullSpec:    opts.PullSpec,
		cron:        cron.New(cron.WithSeconds()),
		highlights:  make(map[string]models.DailyHighlight),
		names:       opts.Names,
		active:      models.UserMe,
		selected:    opts.Now().In(engine.Display()),
	}
}

// Start performs an initial pull and schedules the periodic jobs.
func (s *Session) Start(ctx context.Context) error {
	log.Println("Starting view session...")

	if _, err := s.cron.AddFunc(refreshSpec, s.tickClock); err != nil {
		return fmt.Errorf("scheduling clock refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(refreshSpec, s.tickMarker); err != nil {
		return fmt.Errorf("scheduling marker refresh: %w", err)
	}
	if s.bridge != nil && s.pullSpec != "" {
		if _, err := s.cron.AddFunc(s.pullSpec, func() {
			s.Pull(context.Background())
		}); err != nil {
			return fmt.Errorf("scheduling bridge pull %q: %w", s.pullSpec, err)
		}
	}

	if s.bridge != nil {
		s.Pull(ctx)
	}

	s.cron.Start()
	log.Printf("View session started (pull: %q)", s.pullSpec)
	return nil
}

// Stop cancels the periodic jobs and any pending scroll, then waits for
// in-flight bridge pushes.
func (s *Session) Stop() {
	log.Println("Stopping view session...")
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	s.cancelScrollLocked()
	s.mu.Unlock()

	s.pushes.Wait()
	log.Println("View session stopped")
}

// Engine returns the timeline engine the session renders with.
func (s *Session) Engine() *timeline.Engine {
	return s.engine
}

// Now returns the session's notion of the current instant.
func (s *Session) Now() time.Time {
	return s.now()
}

// SelectedDate returns the selected day in the display zone.
func (s *Session) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// ActiveUser returns the identity currently driving row orientation.
func (s *Session) ActiveUser() models.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Names returns the configured display names.
func (s *Session) Names() models.Names {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names
}

// SelectDate changes the viewed day and re-arms the deferred scroll. A
// pending scroll from an earlier change is discarded.
func (s *Session) SelectDate(d time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = d.In(s.engine.Display())
	s.armScrollLocked()
}

// ChangeDate moves the selected day by n local calendar days.
func (s *Session) ChangeDate(n int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = timeutil.ShiftDays(s.selected, n)
	s.armScrollLocked()
	return s.selected
}

// SetActiveUser switches the identity shown in the top row.
func (s *Session) SetActiveUser(u models.UserID) {
	s.mu.Lock()
	s.active = u
	s.mu.Unlock()
	s.notify("active_user")
}

// Timeline renders the current view.
func (s *Session) Timeline() timeline.View {
	s.mu.Lock()
	mine, partner := models.PartitionByUser(s.events)
	selected, active := s.selected, s.active
	s.mu.Unlock()

	return s.engine.View(mine, partner, selected, active, s.now())
}

// SyncNow returns the scroll target for the current view and broadcasts it.
func (s *Session) SyncNow() float64 {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	offset := s.engine.SyncTarget(selected, s.now())
	if s.broadcaster != nil {
		s.broadcaster.BroadcastScroll(offset, timeutil.DateKey(selected))
	}
	return offset
}

// Clock returns both participants' current-time labels.
func (s *Session) Clock() timeline.Clock {
	return s.engine.Clock(s.now())
}

// Events returns a copy of all events.
func (s *Session) Events() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CalendarEvent{}, s.events...)
}

// AddEvent creates an activity on the selected day owned by the active user.
func (s *Session) AddEvent(req activity.Request) (models.CalendarEvent, []models.CalendarEvent) {
	s.mu.Lock()
	ev := activity.New(req, s.selected, s.active)
	s.events = activity.Add(s.events, ev)
	out := append([]models.CalendarEvent{}, s.events...)
	s.pushLocked()
	s.mu.Unlock()

	s.notify("events")
	return ev, out
}

// DeleteEvent removes the event with id unconditionally. Confirming the
// deletion is the caller's job.
func (s *Session) DeleteEvent(id string) []models.CalendarEvent {
	s.mu.Lock()
	s.events = activity.Delete(id, s.events)
	out := append([]models.CalendarEvent{}, s.events...)
	s.pushLocked()
	s.mu.Unlock()

	s.notify("events")
	return out
}

// ImportEvents merges events whose id is not yet known and returns how
// many were added.
func (s *Session) ImportEvents(events []models.CalendarEvent) (int, []models.CalendarEvent) {
	s.mu.Lock()
	before := len(s.events)
	s.events = bridge.MergeEvents(s.events, events)
	added := len(s.events) - before
	out := append([]models.CalendarEvent{}, s.events...)
	if added > 0 {
		s.pushLocked()
	}
	s.mu.Unlock()

	if added > 0 {
		s.notify("events")
	}
	return added, out
}

// Highlights returns a copy of every highlight.
func (s *Session) Highlights() map[string]models.DailyHighlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return journal.CloneHighlights(s.highlights)
}

// Highlight returns the highlight stored for dateKey.
func (s *Session) Highlight(dateKey string) (models.DailyHighlight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.highlights[dateKey]
	return h, ok
}

// HighlightsForMonth returns the highlights of one calendar month.
func (s *Session) HighlightsForMonth(year int, month time.Month) map[string]models.DailyHighlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return journal.HighlightsForMonth(s.highlights, year, month)
}

// SetHighlight upserts the highlight for dateKey.
func (s *Session) SetHighlight(dateKey, title, color string) map[string]models.DailyHighlight {
	s.mu.Lock()
	s.highlights = journal.SetHighlight(s.highlights, dateKey, title, color)
	out := journal.CloneHighlights(s.highlights)
	s.pushLocked()
	s.mu.Unlock()

	s.notify("highlights")
	return out
}

// ClearHighlight removes the highlight for dateKey.
func (s *Session) ClearHighlight(dateKey string) map[string]models.DailyHighlight {
	s.mu.Lock()
	s.highlights = journal.ClearHighlight(s.highlights, dateKey)
	out := journal.CloneHighlights(s.highlights)
	s.pushLocked()
	s.mu.Unlock()

	s.notify("highlights")
	return out
}

// Feelings returns the entries for dateKey in insertion order.
func (s *Session) Feelings(dateKey string) []models.DailyFeeling {
	s.mu.Lock()
	defer s.mu.Unlock()
	return journal.FeelingsForDay(s.feelings, dateKey)
}

// AddFeeling records a feeling for the selected day by the active user.
func (s *Session) AddFeeling(text, emoji string) []models.DailyFeeling {
	s.mu.Lock()
	s.feelings = journal.AddFeeling(s.feelings, text, emoji, s.active, s.selected, s.now())
	out := append([]models.DailyFeeling{}, s.feelings...)
	s.pushLocked()
	s.mu.Unlock()

	s.notify("feelings")
	return out
}

// Snapshot returns the full shared document for the current state.
func (s *Session) Snapshot() models.SharedData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Pull fetches the remote document and merges it into local state. A
// missing or unreadable remote leaves local state untouched.
func (s *Session) Pull(ctx context.Context) (PullResult, error) {
	if s.bridge == nil {
		return PullResult{}, nil
	}

	remote, err := s.bridge.Fetch(ctx)
	if err == nil && remote == nil {
		err = bridge.ErrNoRemoteState
	}
	if err != nil {
		if errors.Is(err, bridge.ErrNoRemoteState) {
			log.WithError(err).Debug("Bridge pull found no remote state")
		} else {
			log.WithError(err).Warn("Bridge pull failed")
			if s.broadcaster != nil {
				s.broadcaster.BroadcastBridgeFailure("pull", err)
			}
		}
		return PullResult{}, err
	}

	s.mu.Lock()
	before := [3]int{len(s.events), len(s.feelings), len(s.highlights)}
	s.events = bridge.MergeEvents(s.events, remote.Events)
	s.feelings = bridge.MergeFeelings(s.feelings, remote.Feelings)
	s.highlights = bridge.MergeHighlights(s.highlights, remote.Highlights)
	res := PullResult{
		Merged:        true,
		NewEvents:     len(s.events) - before[0],
		NewFeelings:   len(s.feelings) - before[1],
		NewHighlights: len(s.highlights) - before[2],
	}
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"events":     res.NewEvents,
		"feelings":   res.NewFeelings,
		"highlights": res.NewHighlights,
	}).Debug("Bridge pull merged")

	if res.NewEvents+res.NewFeelings+res.NewHighlights > 0 {
		s.notify("bridge")
	}
	return res, nil
}

func (s *Session) snapshotLocked() models.SharedData {
	data := models.SharedData{
		Events:     append([]models.CalendarEvent{}, s.events...),
		Highlights: journal.CloneHighlights(s.highlights),
		Feelings:   append([]models.DailyFeeling{}, s.feelings...),
		Names:      s.names,
	}
	data.Stamp(s.now())
	return data
}

// pushLocked queues the current snapshot for the bridge without waiting.
// A single worker sends them in order; snapshots queued while a push is in
// flight collapse into the newest one.
func (s *Session) pushLocked() {
	if s.bridge == nil {
		return
	}
	snap := s.snapshotLocked()

	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	s.pendingPush = &snap
	if s.pushing {
		return
	}
	s.pushing = true
	s.pushes.Add(1)
	go s.drainPushes()
}

func (s *Session) drainPushes() {
	defer s.pushes.Done()
	for {
		s.pushMu.Lock()
		snap := s.pendingPush
		s.pendingPush = nil
		if snap == nil {
			s.pushing = false
			s.pushMu.Unlock()
			return
		}
		s.pushMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err := s.bridge.Push(ctx, *snap)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Bridge push failed")
			if s.broadcaster != nil {
				s.broadcaster.BroadcastBridgeFailure("push", err)
			}
		}
	}
}

func (s *Session) notify(reason string) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastStateChanged(reason)
	}
}

func (s *Session) cancelScrollLocked() {
	if s.scrollTimer != nil {
		s.scrollTimer.Stop()
		s.scrollTimer = nil
	}
	s.scrollGen++
}

func (s *Session) armScrollLocked() {
	s.cancelScrollLocked()
	gen := s.scrollGen
	s.scrollTimer = time.AfterFunc(s.scrollDelay, func() {
		s.fireScroll(gen)
	})
}

// fireScroll drops the scroll when a later day change superseded it.
func (s *Session) fireScroll(gen uint64) {
	s.mu.Lock()
	if gen != s.scrollGen {
		s.mu.Unlock()
		return
	}
	s.scrollTimer = nil
	selected := s.selected
	s.mu.Unlock()

	offset := s.engine.SyncTarget(selected, s.now())
	if s.broadcaster != nil {
		s.broadcaster.BroadcastScroll(offset, timeutil.DateKey(selected))
	}
}

func (s *Session) tickClock() {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastClockTick(s.Clock())
	}
}

func (s *Session) tickMarker() {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	now := s.now()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMarker(timeline.MarkerOffset(now), timeline.CurrentSlotIndex(now), s.engine.IsToday(selected, now))
	}
}
