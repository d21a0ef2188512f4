/*
tracker.go - The visit-session state machine

PURPOSE:
  Converts serialized "entered office" / "exited office" signals into
  mutations of the Visit collection, guaranteeing at most one Visit per
  calendar day with correct session nesting inside it.

STATE MACHINE (per calendar day):
  no visit          --enter--> visit with one open session     (started)
  open session      --enter--> no-op                           (ignored)
  closed session(s) --enter--> append open session             (resumed)
  open session      --exit---> close last session              (closed)
  no open session   --exit---> no-op                           (ignored)

ORDERING:
  Signals are applied in delivery order. An exit arriving before its
  matching enter (transport delay, app restart mid-session) is NOT
  repaired: the machine takes whatever transition its current state
  dictates, which for an orphan exit is a no-op. Known limitation.

CONCURRENCY:
  A single mutex serializes every mutation; signal delivery is
  callback-driven but the read-modify-write of the visit collection never
  interleaves. Persistence happens after the mutation on a separate
  goroutine and never blocks the caller.
*/
package attendance

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/calendar"
)

// Transition reports what a signal did to the state machine. Signals never
// fail; an impossible signal degrades to TransitionIgnored.
type Transition string

const (
	TransitionStarted Transition = "started" // new visit created for today
	TransitionResumed Transition = "resumed" // new session on today's visit
	TransitionClosed  Transition = "closed"  // open session closed
	TransitionIgnored Transition = "ignored" // duplicate enter or orphan exit
)

// persistTimeout bounds the background save after each mutation.
const persistTimeout = 10 * time.Second

// Tracker owns the visit collection and the currently-active visit
// pointer. It is the single writer; collaborators read through the query
// methods, which return copies.
type Tracker struct {
	mu     sync.Mutex
	clock  Clock
	store  VisitStore // optional; nil disables persistence
	visits []*Visit
	active *Visit
}

// NewTracker creates a tracker with an empty collection. store may be nil
// for a purely in-memory tracker (tests, previews).
func NewTracker(store VisitStore, clock Clock) *Tracker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Tracker{clock: clock, store: store}
}

// Load replaces the in-memory collection with the persisted snapshot.
// Called once at startup, before any signal is delivered.
func (t *Tracker) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	visits, err := t.store.LoadVisits(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.visits = t.visits[:0]
	t.active = nil
	today := t.clock.Now()
	for i := range visits {
		v := visits[i].Clone()
		t.visits = append(t.visits, &v)
		// A session left open on today's visit survives a restart as the
		// active visit. Open sessions on past days stay as-is; they close
		// only when an exit signal eventually arrives.
		if v.IsActiveSession() && calendar.SameDay(v.Date, today) {
			t.active = t.visits[len(t.visits)-1]
		}
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// StartVisit handles an "entered office region" signal. The timestamp is
// always the clock's now; historical signals cannot be backfilled.
func (t *Tracker) StartVisit(at GeoPoint) Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	visit := t.visitForDayLocked(now)

	switch {
	case visit != nil && visit.IsActiveSession():
		// Duplicate enter. This guard is the only defense against two
		// enters in a row.
		return TransitionIgnored

	case visit != nil:
		// Back from lunch: resume with a fresh session. The coordinate
		// set at first creation is not overwritten.
		visit.Sessions = append(visit.Sessions, Session{EntryTime: now})
		t.active = visit
		t.persistLocked(*visit)
		return TransitionResumed

	default:
		v := NewVisit(now, at)
		t.visits = append(t.visits, &v)
		t.active = &v
		t.persistLocked(v)
		return TransitionStarted
	}
}

// EndVisit handles an "exited office region" signal, closing the active
// visit's open session. The visit itself stays in the collection,
// resumable for the rest of the day. An exit with no active visit is a
// no-op (documented policy for orphan exits: ignore).
func (t *Tracker) EndVisit() Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil || !t.active.IsActiveSession() {
		t.active = nil
		return TransitionIgnored
	}

	now := t.clock.Now()
	last := &t.active.Sessions[len(t.active.Sessions)-1]
	if now.Before(last.EntryTime) {
		now = last.EntryTime // clock skew; never record a negative session
	}
	exit := now
	last.ExitTime = &exit

	closed := *t.active
	t.active = nil
	t.persistLocked(closed)
	return TransitionClosed
}

// ConsolidateDuplicates merges any same-day duplicate visits that slipped
// in through legacy data, combining their session lists in chronological
// order into the earliest-created visit. The surviving visit keeps its
// identity and coordinate. Returns the number of visits merged away.
func (t *Tracker) ConsolidateDuplicates(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	byDay := make(map[string][]*Visit, len(t.visits))
	var order []string
	for _, v := range t.visits {
		key := v.Date.Format("2006-01-02")
		if len(byDay[key]) == 0 {
			order = append(order, key)
		}
		byDay[key] = append(byDay[key], v)
	}

	var kept []*Visit
	var removedIDs []string
	for _, key := range order {
		group := byDay[key]
		if len(group) == 1 {
			kept = append(kept, group[0])
			continue
		}

		// The earliest-created visit keeps its identity and coordinate;
		// first entry time stands in for creation order.
		survivor := group[0]
		for _, v := range group[1:] {
			se, sok := survivor.EntryTime()
			ve, vok := v.EntryTime()
			if sok && vok && ve.Before(se) {
				survivor = v
			}
		}
		for _, v := range group {
			if v == survivor {
				continue
			}
			survivor.Sessions = append(survivor.Sessions, v.Sessions...)
			if t.active == v {
				t.active = survivor
			}
			removedIDs = append(removedIDs, v.ID)
		}
		sort.SliceStable(survivor.Sessions, func(i, j int) bool {
			return survivor.Sessions[i].EntryTime.Before(survivor.Sessions[j].EntryTime)
		})
		kept = append(kept, survivor)
		t.persistLocked(*survivor)
	}

	if len(removedIDs) == 0 {
		return 0
	}
	t.visits = kept
	if t.store != nil {
		for _, id := range removedIDs {
			if err := t.store.DeleteVisit(ctx, id); err != nil {
				log.Printf("attendance: delete merged visit %s: %v", id, err)
			}
		}
	}
	return len(removedIDs)
}

// =============================================================================
// QUERIES
// =============================================================================

// IsCurrentlyInOffice reports whether an open session exists right now.
func (t *Tracker) IsCurrentlyInOffice() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil && t.active.IsActiveSession()
}

// CurrentVisit returns a copy of the active visit, or nil.
func (t *Tracker) CurrentVisit() *Visit {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return nil
	}
	v := t.active.Clone()
	return &v
}

// Visits returns a copy of the full collection, ordered by date.
func (t *Tracker) Visits() []Visit {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Visit, len(t.visits))
	for i, v := range t.visits {
		out[i] = v.Clone()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// =============================================================================
// INTERNALS
// =============================================================================

func (t *Tracker) visitForDayLocked(day time.Time) *Visit {
	for _, v := range t.visits {
		if calendar.SameDay(v.Date, day) {
			return v
		}
	}
	return nil
}

// persistLocked snapshots the visit and writes it on a background
// goroutine. The write is best-effort; a failed save is logged and the
// in-memory state stays authoritative until the next successful write.
func (t *Tracker) persistLocked(v Visit) {
	if t.store == nil {
		return
	}
	snapshot := v.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := t.store.SaveVisit(ctx, snapshot); err != nil {
			log.Printf("attendance: save visit %s: %v", snapshot.ID, err)
		}
	}()
}
