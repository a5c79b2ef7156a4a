package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classboard/backend/database"
	"github.com/classboard/backend/models"
	"github.com/classboard/backend/services"
	"github.com/classboard/backend/store"
)

func newFixture(t *testing.T) (*store.Store, *services.AttendanceService, *services.Reconciler) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := database.Open(dsn)
	require.NoError(t, err)
	st := store.New(db, zerolog.Nop())
	return st, services.NewAttendance(st, zerolog.Nop()), services.NewReconciler(st)
}

func enroll(t *testing.T, st *store.Store, classID string, names map[string]string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.UpsertClass(ctx, &models.ClassRoom{ID: classID, Name: classID}))
	for id, name := range names {
		require.NoError(t, st.UpsertStudent(ctx, &models.Student{ID: id, Name: name}))
		require.NoError(t, st.AddRosterMember(ctx, classID, id))
	}
}

func TestOpenDaySeedsWholeRoster(t *testing.T) {
	st, att, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana", "s2": "Bob", "s3": "Cara"})

	seeded, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 3, seeded)

	rows, err := st.QueryAttendance(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, rec := range rows {
		assert.Equal(t, models.StatusUnknown, rec.Status)
	}
}

func TestOpenDayIdempotent(t *testing.T) {
	st, att, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana", "s2": "Bob"})

	_, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	require.NoError(t, att.SetStatus(ctx, "c1", "s1", "2024-05-01", models.StatusPresent))

	// re-opening a seeded day is a no-op and keeps recorded statuses
	seeded, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	assert.Zero(t, seeded)

	rows, err := st.QueryAttendance(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byStudent := map[string]models.AttendanceStatus{}
	for _, rec := range rows {
		byStudent[rec.StudentID] = rec.Status
	}
	assert.Equal(t, models.StatusPresent, byStudent["s1"])
	assert.Equal(t, models.StatusUnknown, byStudent["s2"])
}

func TestOpenDayEmptyRosterSeedsNothing(t *testing.T) {
	st, att, rec := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", nil)

	seeded, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	assert.Zero(t, seeded)

	// an empty seed carries no information: the date never became available
	dates, err := rec.AvailableDates(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestOpenDayUnknownClass(t *testing.T) {
	_, att, _ := newFixture(t)
	_, err := att.OpenDay(context.Background(), "missing", "2024-05-01")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenDayInvalidDate(t *testing.T) {
	st, att, _ := newFixture(t)
	enroll(t, st, "c1", map[string]string{"s1": "Ana"})
	_, err := att.OpenDay(context.Background(), "c1", "01/05/2024")
	assert.ErrorIs(t, err, services.ErrInvalidDate)
}

// flakySeedStore fails the first failSeeds calls to SeedAttendanceRecords with
// failWith, then delegates to the real store. staleReads makes QueryAttendance
// report an empty day regardless of stored rows, mimicking a read that raced a
// concurrent mark.
type flakySeedStore struct {
	services.AttendanceStore
	failSeeds  int
	failWith   error
	seedCalls  int
	staleReads bool
}

func (f *flakySeedStore) SeedAttendanceRecords(ctx context.Context, batch []models.AttendanceRecord) (int, error) {
	f.seedCalls++
	if f.failSeeds > 0 {
		f.failSeeds--
		return 0, f.failWith
	}
	return f.AttendanceStore.SeedAttendanceRecords(ctx, batch)
}

func (f *flakySeedStore) QueryAttendance(ctx context.Context, classID, date string) ([]models.AttendanceRecord, error) {
	if f.staleReads {
		return nil, nil
	}
	return f.AttendanceStore.QueryAttendance(ctx, classID, date)
}

func TestOpenDayRetriesTransientStorageFailureOnce(t *testing.T) {
	st, _, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana", "s2": "Bob"})

	flaky := &flakySeedStore{AttendanceStore: st, failSeeds: 1, failWith: store.ErrStorageIO}
	att := services.NewAttendance(flaky, zerolog.Nop())

	seeded, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 2, seeded)
	assert.Equal(t, 2, flaky.seedCalls)

	rows, err := st.QueryAttendance(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestOpenDayGivesUpAfterSecondStorageFailure(t *testing.T) {
	st, _, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana"})

	flaky := &flakySeedStore{AttendanceStore: st, failSeeds: 2, failWith: store.ErrStorageIO}
	att := services.NewAttendance(flaky, zerolog.Nop())

	_, err := att.OpenDay(ctx, "c1", "2024-05-01")
	assert.ErrorIs(t, err, store.ErrStorageIO)
	assert.Equal(t, 2, flaky.seedCalls)
}

func TestOpenDayNeverRetriesConstraintViolation(t *testing.T) {
	st, _, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana"})

	flaky := &flakySeedStore{AttendanceStore: st, failSeeds: 2, failWith: store.ErrConstraintViolation}
	att := services.NewAttendance(flaky, zerolog.Nop())

	_, err := att.OpenDay(ctx, "c1", "2024-05-01")
	assert.ErrorIs(t, err, store.ErrConstraintViolation)
	assert.Equal(t, 1, flaky.seedCalls)
}

func TestOpenDayRacingMarkKeepsExplicitStatus(t *testing.T) {
	st, _, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana", "s2": "Bob"})

	// s1 is marked PRESENT before the seed runs, but the seed's existence
	// check sees an empty day, as if the mark landed between check and write
	require.NoError(t, st.UpsertAttendanceRecord(ctx, &models.AttendanceRecord{
		ClassID: "c1", StudentID: "s1", Date: "2024-05-01", Status: models.StatusPresent,
	}))
	flaky := &flakySeedStore{AttendanceStore: st, staleReads: true}
	att := services.NewAttendance(flaky, zerolog.Nop())

	seeded, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)

	rows, err := st.QueryAttendance(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byStudent := map[string]models.AttendanceStatus{}
	for _, rec := range rows {
		byStudent[rec.StudentID] = rec.Status
	}
	assert.Equal(t, models.StatusPresent, byStudent["s1"])
	assert.Equal(t, models.StatusUnknown, byStudent["s2"])
}

func TestSetStatusReplacesPriorRecord(t *testing.T) {
	st, att, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana"})
	_, err := att.OpenDay(ctx, "c1", "2024-05-01")
	require.NoError(t, err)

	require.NoError(t, att.SetStatus(ctx, "c1", "s1", "2024-05-01", models.StatusAbsent))
	require.NoError(t, att.SetStatus(ctx, "c1", "s1", "2024-05-01", models.StatusAbsent))

	rows, err := st.QueryAttendance(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusAbsent, rows[0].Status)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	st, att, _ := newFixture(t)
	enroll(t, st, "c1", map[string]string{"s1": "Ana"})
	err := att.SetStatus(context.Background(), "c1", "s1", "2024-05-01", models.StatusUnknown)
	assert.ErrorIs(t, err, services.ErrStatusNotAllowed)

	err = att.SetStatus(context.Background(), "c1", "s1", "2024-05-01", "LATE")
	assert.ErrorIs(t, err, services.ErrStatusNotAllowed)
}

func TestSetStatusBeforeOpenSeedsOneRecord(t *testing.T) {
	st, att, _ := newFixture(t)
	ctx := context.Background()
	enroll(t, st, "c1", map[string]string{"s1": "Ana", "s2": "Bob"})

	// permitted: the date becomes partially seeded with just this record
	require.NoError(t, att.SetStatus(ctx, "c1", "s1", "2024-05-01", models.StatusPresent))

	rows, err := st.QueryAttendance(ctx, "c1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s1", rows[0].StudentID)
}
