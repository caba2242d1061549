package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
)

func newCatalogFixture() (*CatalogService, *fakeStore) {
	store := newFakeStore()
	svc := NewCatalogService(store)
	svc.now = func() time.Time { return testStart.Add(-72 * time.Hour) }

	store.jobs[10] = &model.Job{
		BaseModel:    model.BaseModel{ID: 10},
		Name:         "Warehouse Packer",
		Industry:     "Logistics",
		Address:      "12 Harbour Rd",
		ShortAddress: "Harbour Rd",
		Latitude:     siteLat,
		Longitude:    siteLng,
		Status:       model.JobStatusActive,
	}
	store.shifts[20] = &model.Shift{
		BaseModel:     model.BaseModel{ID: 20},
		JobID:         10,
		StartClock:    "09:00",
		EndClock:      "18:00",
		RateType:      model.RateTypeHourly,
		PayRate:       15,
		DurationHours: 9,
		BreakHours:    1,
		BreakType:     model.BreakTypeUnpaid,
	}
	store.occs[occKey{20, "2026-09-10"}] = &model.ShiftOccurrence{
		BaseModel:      model.BaseModel{ID: 1},
		ShiftID:        20,
		JobID:          10,
		Date:           "2026-09-10",
		StartAt:        testStart,
		EndAt:          testStart.Add(9 * time.Hour),
		Vacancy:        3,
		StandbyVacancy: 1,
		FilledPrimary:  1,
	}
	return svc, store
}

func TestListJobs(t *testing.T) {
	svc, store := newCatalogFixture()
	store.jobs[11] = &model.Job{
		BaseModel: model.BaseModel{ID: 11},
		Name:      "Closed Cafe",
		Status:    model.JobStatusDeactivated,
	}

	items, total, err := svc.ListJobs(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(10), items[0].JobID)
	assert.Equal(t, "Warehouse Packer", items[0].Name)
	assert.Equal(t, "2 open seats", items[0].SlotLabel)
}

func TestListJobsWithoutOccurrences(t *testing.T) {
	svc, store := newCatalogFixture()
	delete(store.occs, occKey{20, "2026-09-10"})

	items, _, err := svc.ListJobs(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "No upcoming shifts", items[0].SlotLabel)
}

func TestJobDetail(t *testing.T) {
	svc, _ := newCatalogFixture()

	detail, err := svc.JobDetail(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), detail.JobID)
	assert.Equal(t, "12 Harbour Rd", detail.Address)
	assert.InDelta(t, siteLat, detail.Latitude, 1e-9)
	assert.Empty(t, detail.StandbyDisclaimer)

	require.Len(t, detail.Slots, 1)
	slot := detail.Slots[0]
	assert.Equal(t, "2026-09-10", slot.Date)
	assert.Equal(t, "09:00", slot.StartClock)
	assert.Equal(t, 2, slot.RemainingPrimary)
	assert.Equal(t, 1, slot.RemainingStandby)
	assert.False(t, slot.StandbyAvailable)
	assert.Equal(t, "2 slots left", slot.SlotLabel)
	assert.InDelta(t, 120.0, slot.TotalWage, 1e-9) // 15/h * (9h - 1h unpaid break)
}

func TestJobDetailStandbyOnly(t *testing.T) {
	svc, store := newCatalogFixture()
	occ := store.occs[occKey{20, "2026-09-10"}]
	occ.FilledPrimary = occ.Vacancy

	detail, err := svc.JobDetail(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, detail.Slots, 1)
	assert.True(t, detail.Slots[0].StandbyAvailable)
	assert.Equal(t, "Standby only", detail.Slots[0].SlotLabel)
	assert.Equal(t, standbyDisclaimer, detail.StandbyDisclaimer)
}

func TestJobDetailSkipsPastDates(t *testing.T) {
	svc, store := newCatalogFixture()
	store.occs[occKey{20, "2026-09-01"}] = &model.ShiftOccurrence{
		BaseModel: model.BaseModel{ID: 2},
		ShiftID:   20,
		JobID:     10,
		Date:      "2026-09-01",
		Vacancy:   3,
	}

	detail, err := svc.JobDetail(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, detail.Slots, 1)
	assert.Equal(t, "2026-09-10", detail.Slots[0].Date)
}

func TestJobDetailNotFound(t *testing.T) {
	svc, _ := newCatalogFixture()

	_, err := svc.JobDetail(context.Background(), 999)
	assert.Equal(t, errors.JobNotFound, err)
}
