package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/geo"
	"HustleHeroes/pkg/qrcode"
)

// 新加坡滨海湾附近的坐标，围栏半径 100 米
var (
	siteLat = 1.2830
	siteLng = 103.8600
)

func newApplication() *model.Application {
	return &model.Application{
		BaseModel:     model.BaseModel{ID: 9001},
		WorkerID:      1,
		JobID:         10,
		ShiftID:       20,
		Date:          "2026-09-01",
		SeatKind:      model.SeatKindPrimary,
		AppliedStatus: model.AppliedStatusApplied,
		Status:        model.ApplicationStatusUpcoming,
	}
}

func newClockInParams(now time.Time) ClockInParams {
	return ClockInParams{
		Job: &model.Job{Latitude: siteLat, Longitude: siteLng},
		Occ: &model.ShiftOccurrence{
			StartAt: now.Add(5 * time.Minute),
			EndAt:   now.Add(8 * time.Hour),
		},
		QR: &qrcode.Claims{
			JobID:   10,
			ShiftID: 20,
			Date:    "2026-09-01",
		},
		Point:   geo.Point{Latitude: siteLat, Longitude: siteLng},
		RadiusM: 100,
		Now:     now,
	}
}

func TestClockInSuccess(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 55, 0, 0, time.UTC)
	app := newApplication()

	event, err := ClockIn(app, newClockInParams(now))
	require.NoError(t, err)

	require.NotNil(t, app.ClockInTime)
	assert.Equal(t, now, *app.ClockInTime)
	require.NotNil(t, app.CheckInLat)
	assert.Equal(t, siteLat, *app.CheckInLat)

	assert.Equal(t, model.AttendanceEventClockIn, event.EventType)
	assert.Equal(t, app.ID, event.ApplicationID)
	assert.False(t, event.IsLate)
}

func TestClockInLate(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 20, 0, 0, time.UTC)
	app := newApplication()
	params := newClockInParams(now)
	params.Occ.StartAt = now.Add(-20 * time.Minute)

	event, err := ClockIn(app, params)
	require.NoError(t, err)
	assert.True(t, event.IsLate)
}

func TestClockInGuards(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 55, 0, 0, time.UTC)

	t.Run("cancelled application", func(t *testing.T) {
		app := newApplication()
		app.Status = model.ApplicationStatusCancelled
		app.AppliedStatus = model.AppliedStatusCancelled

		_, err := ClockIn(app, newClockInParams(now))
		assert.ErrorIs(t, err, errors.NotApplied)
	})

	t.Run("standby not activated", func(t *testing.T) {
		app := newApplication()
		app.IsStandby = true
		app.SeatKind = model.SeatKindStandby

		_, err := ClockIn(app, newClockInParams(now))
		assert.ErrorIs(t, err, errors.NotApplied)
	})

	t.Run("already clocked in", func(t *testing.T) {
		app := newApplication()
		earlier := now.Add(-10 * time.Minute)
		app.ClockInTime = &earlier

		_, err := ClockIn(app, newClockInParams(now))
		assert.ErrorIs(t, err, errors.AlreadyClockedIn)
	})

	t.Run("qr bound to another shift", func(t *testing.T) {
		app := newApplication()
		params := newClockInParams(now)
		params.QR.ShiftID = 99

		_, err := ClockIn(app, params)
		assert.ErrorIs(t, err, errors.QRShiftMismatch)
		assert.Nil(t, app.ClockInTime)
	})

	t.Run("qr bound to another date", func(t *testing.T) {
		app := newApplication()
		params := newClockInParams(now)
		params.QR.Date = "2026-09-02"

		_, err := ClockIn(app, params)
		assert.ErrorIs(t, err, errors.QRShiftMismatch)
	})

	t.Run("missing qr", func(t *testing.T) {
		app := newApplication()
		params := newClockInParams(now)
		params.QR = nil

		_, err := ClockIn(app, params)
		assert.ErrorIs(t, err, errors.QRInvalid)
	})

	t.Run("outside geofence", func(t *testing.T) {
		app := newApplication()
		params := newClockInParams(now)
		// 约 1.1 公里外
		params.Point = geo.Point{Latitude: siteLat + 0.01, Longitude: siteLng}

		_, err := ClockIn(app, params)
		assert.ErrorIs(t, err, errors.OutsideGeofence)
		assert.Nil(t, app.ClockInTime)
	})
}

func TestClockOutSuccess(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	occ := &model.ShiftOccurrence{StartAt: start, EndAt: end}

	app := newApplication()
	in := start.Add(-5 * time.Minute)
	app.ClockInTime = &in

	now := end.Add(3 * time.Minute)
	event, err := ClockOut(app, occ, now)
	require.NoError(t, err)

	require.NotNil(t, app.ClockOutTime)
	assert.Equal(t, now, *app.ClockOutTime)
	assert.Equal(t, model.AttendanceEventClockOut, event.EventType)
	assert.False(t, event.IsEarlyLeave)

	// 下班打卡不改变申请状态，完成是独立动作
	assert.Equal(t, model.ApplicationStatusUpcoming, app.Status)
}

func TestClockOutEarlyLeave(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	occ := &model.ShiftOccurrence{StartAt: start, EndAt: start.Add(8 * time.Hour)}

	app := newApplication()
	in := start
	app.ClockInTime = &in

	event, err := ClockOut(app, occ, start.Add(4*time.Hour))
	require.NoError(t, err)
	assert.True(t, event.IsEarlyLeave)
}

func TestClockOutGuards(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	occ := &model.ShiftOccurrence{StartAt: start, EndAt: start.Add(8 * time.Hour)}
	now := start.Add(8 * time.Hour)

	t.Run("not clocked in", func(t *testing.T) {
		app := newApplication()
		_, err := ClockOut(app, occ, now)
		assert.ErrorIs(t, err, errors.NotClockedIn)
	})

	t.Run("already clocked out", func(t *testing.T) {
		app := newApplication()
		in := start
		out := start.Add(7 * time.Hour)
		app.ClockInTime = &in
		app.ClockOutTime = &out

		_, err := ClockOut(app, occ, now)
		assert.ErrorIs(t, err, errors.AlreadyClockedOut)
	})

	t.Run("terminal application", func(t *testing.T) {
		app := newApplication()
		in := start
		app.ClockInTime = &in
		app.Status = model.ApplicationStatusNoShow

		_, err := ClockOut(app, occ, now)
		assert.ErrorIs(t, err, errors.NotApplied)
	})
}
