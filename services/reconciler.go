// Package services holds the read-side reconciliation of rosters with
// attendance rows and the write-side attendance day protocol. Both sit
// directly on the store; neither keeps state of its own.
package services

import (
	"context"
	"sort"

	"github.com/classboard/backend/models"
	"github.com/classboard/backend/store"
)

// RosterEntry is one student's status on an attendance sheet.
type RosterEntry struct {
	Student models.Student          `json:"student"`
	Status  models.AttendanceStatus `json:"status"`
}

// AttendanceSheet is the per-student view of one class on one date. Every
// current roster member appears exactly once.
type AttendanceSheet struct {
	Date    string        `json:"date"`
	Entries []RosterEntry `json:"entries"`
}

// ClassView is the full materialized state of a class: roster, attendance
// history (newest date first), available dates and announcements.
type ClassView struct {
	Class         models.ClassRoom      `json:"class"`
	Roster        []models.Student      `json:"roster"`
	Sheets        []AttendanceSheet     `json:"sheets"`
	Dates         []string              `json:"dates"`
	Announcements []models.Announcement `json:"announcements"`
}

// Reconciler projects application-level views out of raw rows. It never
// writes; stale roster/record combinations are repaired at read time by
// synthesizing UNKNOWN, never by mutating the store.
type Reconciler struct {
	store *store.Store
}

func NewReconciler(st *store.Store) *Reconciler {
	return &Reconciler{store: st}
}

func (r *Reconciler) Roster(ctx context.Context, classID string) ([]models.Student, error) {
	return r.store.ListRoster(ctx, classID)
}

// Sheet answers "who was what on date D". The roster is the source of truth
// for who must appear: a member without a stored record for D gets UNKNOWN.
// Records of students no longer on the roster are ignored.
func (r *Reconciler) Sheet(ctx context.Context, classID, date string) (*AttendanceSheet, error) {
	roster, err := r.store.ListRoster(ctx, classID)
	if err != nil {
		return nil, err
	}
	records, err := r.store.QueryAttendance(ctx, classID, date)
	if err != nil {
		return nil, err
	}
	return buildSheet(date, roster, records), nil
}

// History groups every stored record by date and builds a full sheet per
// date, newest first.
func (r *Reconciler) History(ctx context.Context, classID string) ([]AttendanceSheet, error) {
	roster, err := r.store.ListRoster(ctx, classID)
	if err != nil {
		return nil, err
	}
	records, err := r.store.QueryAttendanceHistory(ctx, classID)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string][]models.AttendanceRecord)
	for _, rec := range records {
		byDate[rec.Date] = append(byDate[rec.Date], rec)
	}
	dates := sortedDatesDesc(byDate)
	sheets := make([]AttendanceSheet, 0, len(dates))
	for _, d := range dates {
		sheets = append(sheets, *buildSheet(d, roster, byDate[d]))
	}
	return sheets, nil
}

// AvailableDates is the distinct set of dates with at least one stored
// record, newest first. A day nobody has opened is not available.
func (r *Reconciler) AvailableDates(ctx context.Context, classID string) ([]string, error) {
	records, err := r.store.QueryAttendanceHistory(ctx, classID)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string][]models.AttendanceRecord)
	for _, rec := range records {
		byDate[rec.Date] = append(byDate[rec.Date], rec)
	}
	return sortedDatesDesc(byDate), nil
}

// View materializes the whole class aggregate.
func (r *Reconciler) View(ctx context.Context, classID string) (*ClassView, error) {
	class, err := r.store.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	roster, err := r.store.ListRoster(ctx, classID)
	if err != nil {
		return nil, err
	}
	sheets, err := r.History(ctx, classID)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(sheets))
	for _, sh := range sheets {
		dates = append(dates, sh.Date)
	}
	anns, err := r.store.ListAnnouncementsForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return &ClassView{
		Class:         *class,
		Roster:        roster,
		Sheets:        sheets,
		Dates:         dates,
		Announcements: anns,
	}, nil
}

// WatchView re-derives the class aggregate whenever any row it depends on
// changes. The subscription ends when the class is deleted (the requery
// returns NotFound and the consumer sees no further emissions after
// cancelling).
func (r *Reconciler) WatchView(ctx context.Context, classID string) *store.Subscription[*ClassView] {
	topics := []store.Topic{
		store.ClassesTopic,
		store.StudentsTopic,
		store.RosterTopic(classID),
		store.AttendanceTopic(classID),
		store.AnnouncementsTopic(classID),
	}
	return store.Watch(ctx, r.store, topics, func(ctx context.Context) (*ClassView, error) {
		return r.View(ctx, classID)
	})
}

func buildSheet(date string, roster []models.Student, records []models.AttendanceRecord) *AttendanceSheet {
	statuses := make(map[string]models.AttendanceStatus, len(records))
	for _, rec := range records {
		statuses[rec.StudentID] = rec.Status
	}
	entries := make([]RosterEntry, 0, len(roster))
	for _, st := range roster {
		status, ok := statuses[st.ID]
		if !ok {
			status = models.StatusUnknown
		}
		entries = append(entries, RosterEntry{Student: st, Status: status})
	}
	return &AttendanceSheet{Date: date, Entries: entries}
}

func sortedDatesDesc(byDate map[string][]models.AttendanceRecord) []string {
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	// ISO dates sort lexically, so reverse string order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}
