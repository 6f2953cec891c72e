package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleFixture() (*fakeRepoManager, *recordingNotifier) {
	rm := &fakeRepoManager{
		w: &fakeWorkspacesRepo{byID: map[string]models.Workspace{
			"w1": {ID: "w1", UserID: "u1"},
			"w2": {ID: "w2", UserID: "u2"},
		}},
		it: &fakeItemsRepo{byID: map[string]models.ScheduledItem{
			"i1": {ID: "i1", UserID: "u1", WorkspaceID: "w1"},
			"i2": {ID: "i2", UserID: "u2", WorkspaceID: "w2"},
		}},
	}
	return rm, &recordingNotifier{}
}

func validItem() *models.ScheduledItem {
	return &models.ScheduledItem{
		WorkspaceID: "w1",
		Title:       " First video ",
		MediaURL:    "http://127.0.0.1:9000/videos/a.mp4",
		ScheduledAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Targets:     models.Targets{YouTube: true},
	}
}

func TestScheduleService_ListForcesCaller(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm, n := scheduleFixture()
	rm.it.list = []models.ScheduledItem{{ID: "i1"}}
	s := NewScheduleService(db, rm, n)

	got, err := s.List(context.Background(), "u1", schedule.Query{UserID: "someone-else", WorkspaceID: "w1", Order: schedule.Descending})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "u1", rm.it.lastQuery.UserID)
	assert.Equal(t, "w1", rm.it.lastQuery.WorkspaceID)
	assert.Equal(t, schedule.Descending, rm.it.lastQuery.Order)

	rm.it.listErr = errBoom{}
	_, err = s.List(context.Background(), "u1", schedule.Query{})
	assert.ErrorContains(t, err, "error listing items: boom")
}

func TestScheduleService_Create(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm, n := scheduleFixture()
	s := NewScheduleService(db, rm, n)

	in := validItem()
	in.ID = "client-chosen"
	in.UserID = "u2"
	in.Status = models.StatusPublished

	got, err := s.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "i-new", got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "First video", got.Title)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Equal(t, models.StatusPublished, in.Status, "input must not be mutated")

	require.Len(t, n.events, 1)
	assert.Equal(t, schedule.ChangeEvent{
		Type: schedule.EventInsert, Table: schedule.TableItems, RecordID: "i-new", UserID: "u1", WorkspaceID: "w1",
	}, n.events[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleService_CreateValidation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm, n := scheduleFixture()
	s := NewScheduleService(db, rm, n)

	cases := map[string]func(*models.ScheduledItem){
		"no title":     func(it *models.ScheduledItem) { it.Title = "  " },
		"long title":   func(it *models.ScheduledItem) { it.Title = strings.Repeat("a", common.MaxTitleLength+1) },
		"no media":     func(it *models.ScheduledItem) { it.MediaURL = "" },
		"bad media":    func(it *models.ScheduledItem) { it.MediaURL = "not a url" },
		"no workspace": func(it *models.ScheduledItem) { it.WorkspaceID = "" },
		"no time":      func(it *models.ScheduledItem) { it.ScheduledAt = time.Time{} },
		"no target":    func(it *models.ScheduledItem) { it.Targets = models.Targets{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			it := validItem()
			mutate(it)
			_, err := s.Create(context.Background(), "u1", it)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}

	_, err := s.Create(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Nil(t, rm.it.inserted)
	assert.Empty(t, n.events)
}

func TestScheduleService_CreateForeignWorkspace(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm, n := scheduleFixture()
	s := NewScheduleService(db, rm, n)

	it := validItem()
	it.WorkspaceID = "w2"
	_, err := s.Create(context.Background(), "u1", it)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Nil(t, rm.it.inserted)
	assert.Empty(t, n.events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleService_Delete(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm, n := scheduleFixture()
	s := NewScheduleService(db, rm, n)

	require.NoError(t, s.Delete(context.Background(), "u1", "i1"))
	assert.Equal(t, []string{"i1"}, rm.it.deleted)
	require.Len(t, n.events, 1)
	assert.Equal(t, schedule.EventDelete, n.events[0].Type)
	assert.Equal(t, "w1", n.events[0].WorkspaceID)

	err := s.Delete(context.Background(), "u1", "i2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Len(t, n.events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
