package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
)

// =============================================================================
// TEST CLOCK - Controllable time source
// =============================================================================

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock(start time.Time) *manualClock {
	return &manualClock{t: start}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// morningOf returns 09:00 UTC on the given date.
func morningOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

// =============================================================================
// STATE MACHINE TRANSITIONS
// =============================================================================

func TestTracker_DoubleEnter_SecondIsNoOp(t *testing.T) {
	// GIVEN: a tracker that received an enter signal
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)

	// WHEN: the same enter signal arrives twice without an exit
	first := tr.StartVisit(officePoint)
	clock.Advance(5 * time.Minute)
	second := tr.StartVisit(officePoint)

	// THEN: exactly one visit with exactly one session; the second signal
	// was ignored by the active-session guard
	assert.Equal(t, attendance.TransitionStarted, first)
	assert.Equal(t, attendance.TransitionIgnored, second)

	visits := tr.Visits()
	require.Len(t, visits, 1)
	assert.Len(t, visits[0].Sessions, 1)
	assert.True(t, tr.IsCurrentlyInOffice())
}

func TestTracker_EnterExitEnter_SameDay_ResumesSession(t *testing.T) {
	// GIVEN: an office morning, a lunch break, and a return
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)

	assert.Equal(t, attendance.TransitionStarted, tr.StartVisit(officePoint))
	clock.Advance(3 * time.Hour)
	assert.Equal(t, attendance.TransitionClosed, tr.EndVisit())
	clock.Advance(time.Hour)
	assert.Equal(t, attendance.TransitionResumed, tr.StartVisit(officePoint))

	// THEN: one visit with two sessions, the second still open
	visits := tr.Visits()
	require.Len(t, visits, 1)
	require.Len(t, visits[0].Sessions, 2)
	assert.NotNil(t, visits[0].Sessions[0].ExitTime)
	assert.Nil(t, visits[0].Sessions[1].ExitTime)
	assert.True(t, tr.IsCurrentlyInOffice())
}

func TestTracker_ResumeKeepsOriginalCoordinate(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)

	tr.StartVisit(officePoint)
	clock.Advance(2 * time.Hour)
	tr.EndVisit()
	clock.Advance(time.Hour)
	tr.StartVisit(attendance.GeoPoint{Latitude: 40.0, Longitude: -74.0})

	visits := tr.Visits()
	require.Len(t, visits, 1)
	require.NotNil(t, visits[0].Coordinate)
	assert.Equal(t, officePoint, *visits[0].Coordinate)
}

func TestTracker_ExitWithoutEnter_IsNoOp(t *testing.T) {
	// An exit with no matching enter (app restart mid-session, transport
	// reordering) is ignored, not repaired.
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)

	assert.Equal(t, attendance.TransitionIgnored, tr.EndVisit())
	assert.Empty(t, tr.Visits())
	assert.False(t, tr.IsCurrentlyInOffice())
}

func TestTracker_NewDay_NewVisit(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)

	tr.StartVisit(officePoint)
	clock.Advance(8 * time.Hour)
	tr.EndVisit()

	clock.Set(morningOf(2026, time.March, 11))
	tr.StartVisit(officePoint)

	visits := tr.Visits()
	require.Len(t, visits, 2)
	assert.NotEqual(t, visits[0].ID, visits[1].ID)
	assert.NotEqual(t, visits[0].Date, visits[1].Date)
}

func TestTracker_CurrentVisit_ClearedOnExitButVisitRemains(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)

	tr.StartVisit(officePoint)
	require.NotNil(t, tr.CurrentVisit())

	clock.Advance(2 * time.Hour)
	tr.EndVisit()

	// The active pointer clears; the visit stays in the collection.
	assert.Nil(t, tr.CurrentVisit())
	assert.False(t, tr.IsCurrentlyInOffice())
	assert.Len(t, tr.Visits(), 1)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestTracker_PersistsAfterEachMutation(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	mem := store.NewMemory()
	tr := attendance.NewTracker(mem, clock)

	tr.StartVisit(officePoint)
	require.Eventually(t, func() bool {
		visits, err := mem.LoadVisits(context.Background())
		return err == nil && len(visits) == 1 && visits[0].IsActiveSession()
	}, time.Second, 10*time.Millisecond)

	clock.Advance(2 * time.Hour)
	tr.EndVisit()
	require.Eventually(t, func() bool {
		visits, err := mem.LoadVisits(context.Background())
		return err == nil && len(visits) == 1 && !visits[0].IsActiveSession()
	}, time.Second, 10*time.Millisecond)
}

func TestTracker_Load_RestoresActiveVisitForToday(t *testing.T) {
	// GIVEN: a persisted visit with an open session earlier today
	clock := newManualClock(morningOf(2026, time.March, 10))
	mem := store.NewMemory()
	v := attendance.NewVisit(morningOf(2026, time.March, 10).Add(-time.Hour), officePoint)
	require.NoError(t, mem.SaveVisit(context.Background(), v))

	// WHEN: a fresh tracker loads the snapshot
	tr := attendance.NewTracker(mem, clock)
	require.NoError(t, tr.Load(context.Background()))

	// THEN: the open session survives the restart as the active visit
	assert.True(t, tr.IsCurrentlyInOffice())
	current := tr.CurrentVisit()
	require.NotNil(t, current)
	assert.Equal(t, v.ID, current.ID)
}

// =============================================================================
// DUPLICATE-DAY CONSOLIDATION
// =============================================================================

func TestTracker_ConsolidateDuplicates_MergesSameDay(t *testing.T) {
	// GIVEN: two persisted visits on the same day (pre-session-model
	// legacy shape), the earlier-created one first by entry time
	ctx := context.Background()
	clock := newManualClock(morningOf(2026, time.March, 10))
	mem := store.NewMemory()

	early := attendance.NewVisit(morningOf(2026, time.March, 10), officePoint)
	exit1 := early.Sessions[0].EntryTime.Add(2 * time.Hour)
	early.Sessions[0].ExitTime = &exit1

	late := attendance.NewVisit(morningOf(2026, time.March, 10).Add(4*time.Hour), officePoint)
	exit2 := late.Sessions[0].EntryTime.Add(time.Hour)
	late.Sessions[0].ExitTime = &exit2

	require.NoError(t, mem.SaveVisit(ctx, late))
	require.NoError(t, mem.SaveVisit(ctx, early))

	tr := attendance.NewTracker(mem, clock)
	require.NoError(t, tr.Load(ctx))

	// WHEN: consolidating
	merged := tr.ConsolidateDuplicates(ctx)

	// THEN: one visit remains, keeping the earliest visit's identity,
	// with both sessions in chronological order
	assert.Equal(t, 1, merged)
	visits := tr.Visits()
	require.Len(t, visits, 1)
	assert.Equal(t, early.ID, visits[0].ID)
	require.Len(t, visits[0].Sessions, 2)
	assert.True(t, visits[0].Sessions[0].EntryTime.Before(visits[0].Sessions[1].EntryTime))

	// And the duplicate row is gone from the store
	require.Eventually(t, func() bool {
		stored, err := mem.LoadVisits(ctx)
		return err == nil && len(stored) == 1 && stored[0].ID == early.ID
	}, time.Second, 10*time.Millisecond)
}

func TestTracker_ConsolidateDuplicates_NoDuplicatesIsZero(t *testing.T) {
	clock := newManualClock(morningOf(2026, time.March, 10))
	tr := attendance.NewTracker(nil, clock)
	tr.StartVisit(officePoint)
	assert.Equal(t, 0, tr.ConsolidateDuplicates(context.Background()))
}
