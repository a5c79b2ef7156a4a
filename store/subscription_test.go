package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/store"
)

// waitFor reads snapshots until pred holds or the timeout passes. Emissions
// are coalesced, so intermediate states may legitimately never be observed.
func waitFor[T any](t *testing.T, sub *store.Subscription[T], pred func(T) bool) T {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Updates():
			require.True(t, ok, "subscription closed before condition held")
			if pred(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestWatchStudentsEmitsSnapshots(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertStudent(ctx, &models.Student{ID: "s1", Name: "Ana"}))

	sub := s.WatchStudents(ctx)
	defer sub.Cancel()

	// initial snapshot reflects current state
	waitFor(t, sub, func(rows []models.Student) bool { return len(rows) == 1 })

	require.NoError(t, s.UpsertStudent(ctx, &models.Student{ID: "s2", Name: "Bob"}))
	waitFor(t, sub, func(rows []models.Student) bool { return len(rows) == 2 })

	require.NoError(t, s.DeleteStudent(ctx, "s1"))
	rows := waitFor(t, sub, func(rows []models.Student) bool { return len(rows) == 1 })
	assert.Equal(t, "s2", rows[0].ID)
}

func TestWatchCancelStopsEmissions(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sub := s.WatchStudents(ctx)
	waitFor(t, sub, func(rows []models.Student) bool { return true })

	sub.Cancel()

	// channel closes; writes after cancellation emit nothing
	require.NoError(t, s.UpsertStudent(ctx, &models.Student{ID: "s1", Name: "Ana"}))
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Updates():
			if !ok {
				return
			}
			// a final in-flight snapshot may drain; keep reading until close
		case <-deadline:
			t.Fatal("subscription channel did not close after Cancel")
		}
	}
}

func TestWatchCoalescesRapidWrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertClass(ctx, &models.ClassRoom{ID: "c1", Name: "Algebra"}))

	sub := s.WatchAttendance(ctx, "c1")
	defer sub.Cancel()
	waitFor(t, sub, func(rows []models.AttendanceRecord) bool { return len(rows) == 0 })

	// burst of writes; the slow consumer must still end at the latest state
	const n = 25
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("s%02d", i)
		require.NoError(t, s.UpsertStudent(ctx, &models.Student{ID: id, Name: "Student " + id}))
		require.NoError(t, s.UpsertAttendanceRecord(ctx, &models.AttendanceRecord{
			ClassID: "c1", StudentID: id, Date: "2024-05-01", Status: models.StatusPresent,
		}))
	}
	waitFor(t, sub, func(rows []models.AttendanceRecord) bool { return len(rows) == n })
}

func TestWatchRosterSeesStudentEdits(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	seedClassWithRoster(t, s, "c1", "s1")

	sub := s.WatchRoster(ctx, "c1")
	defer sub.Cancel()
	waitFor(t, sub, func(rows []models.Student) bool { return len(rows) == 1 })

	// a profile edit, not a roster write, still reaches the watcher
	require.NoError(t, s.UpsertStudent(ctx, &models.Student{ID: "s1", Name: "Renamed"}))
	waitFor(t, sub, func(rows []models.Student) bool {
		return len(rows) == 1 && rows[0].Name == "Renamed"
	})
}

func TestUpsertStudentsBatchReachesRosterWatchers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	seedClassWithRoster(t, s, "c1", "s1")

	sub := s.WatchRoster(ctx, "c1")
	defer sub.Cancel()
	waitFor(t, sub, func(rows []models.Student) bool { return len(rows) == 1 })

	// a batch upsert renaming an enrolled student wakes the class's roster
	// watcher, same as the single-row path
	require.NoError(t, s.UpsertStudents(ctx, []models.Student{
		{ID: "s1", Name: "Renamed"},
		{ID: "s9", Name: "Unenrolled"},
	}))
	waitFor(t, sub, func(rows []models.Student) bool {
		return len(rows) == 1 && rows[0].Name == "Renamed"
	})
}

func TestDeleteStudentNotifiesAttendanceOnlyClasses(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	seedClassWithRoster(t, s, "c1", "s1")
	require.NoError(t, s.UpsertAttendanceRecord(ctx, &models.AttendanceRecord{
		ClassID: "c1", StudentID: "s1", Date: "2024-05-01", Status: models.StatusPresent,
	}))
	// off the roster, but the attendance row stays behind
	require.NoError(t, s.RemoveRosterMember(ctx, "c1", "s1"))

	sub := s.WatchAttendance(ctx, "c1")
	defer sub.Cancel()
	waitFor(t, sub, func(rows []models.AttendanceRecord) bool { return len(rows) == 1 })

	// deleting the student cascades onto the record and the watcher hears it,
	// even though no membership row linked the two anymore
	require.NoError(t, s.DeleteStudent(ctx, "s1"))
	waitFor(t, sub, func(rows []models.AttendanceRecord) bool { return len(rows) == 0 })
}

func TestWatchAttendanceScopedToClass(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	seedClassWithRoster(t, s, "c1", "s1")
	seedClassWithRoster(t, s, "c2", "s2")

	sub := s.WatchAttendance(ctx, "c1")
	defer sub.Cancel()
	waitFor(t, sub, func(rows []models.AttendanceRecord) bool { return len(rows) == 0 })

	// a write to another class does not wake this subscription; a write to
	// c1 afterwards must deliver a snapshot that still has exactly one row
	require.NoError(t, s.UpsertAttendanceRecord(ctx, &models.AttendanceRecord{
		ClassID: "c2", StudentID: "s2", Date: "2024-05-01", Status: models.StatusPresent,
	}))
	require.NoError(t, s.UpsertAttendanceRecord(ctx, &models.AttendanceRecord{
		ClassID: "c1", StudentID: "s1", Date: "2024-05-01", Status: models.StatusTardy,
	}))
	rows := waitFor(t, sub, func(rows []models.AttendanceRecord) bool { return len(rows) == 1 })
	assert.Equal(t, "c1", rows[0].ClassID)
	assert.Equal(t, models.StatusTardy, rows[0].Status)
}
