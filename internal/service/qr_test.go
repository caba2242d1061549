package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HustleHeroes/internal/model"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/pkg/errors"
)

func newQRFixture() (*QRService, *fakeStore) {
	store := newFakeStore()
	svc := NewQRService(store)
	svc.now = func() time.Time { return testStart.Add(-time.Hour) }
	svc.issue = func(jobID, shiftID int64, date string, from, until time.Time) (string, error) {
		return "signed-token", nil
	}

	store.shifts[20] = &model.Shift{
		BaseModel: model.BaseModel{ID: 20},
		JobID:     10,
	}
	store.occs[occKey{20, "2026-09-10"}] = &model.ShiftOccurrence{
		BaseModel: model.BaseModel{ID: 1},
		ShiftID:   20,
		JobID:     10,
		Date:      "2026-09-10",
		StartAt:   testStart,
		EndAt:     testStart.Add(8 * time.Hour),
	}
	return svc, store
}

func TestIssueQR(t *testing.T) {
	svc, store := newQRFixture()

	data, err := svc.IssueQR(context.Background(), &dto.IssueQRRequest{
		JobID: 10, ShiftID: 20, Date: "2026-09-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", data.Token)
	// 窗口从开班前 QR_VALID_MINUTES 分钟开到班次结束
	assert.True(t, data.ValidFrom.Before(testStart))
	assert.Equal(t, testStart.Add(8*time.Hour), data.ValidUntil)

	require.Len(t, store.qrCodes, 1)
	record := store.qrCodes[0]
	assert.Equal(t, int64(20), record.ShiftID)
	assert.Equal(t, "2026-09-10", record.Date)
	assert.Equal(t, "signed-token", record.Token)
}

func TestIssueQRGuards(t *testing.T) {
	t.Run("bad date format", func(t *testing.T) {
		svc, _ := newQRFixture()
		_, err := svc.IssueQR(context.Background(), &dto.IssueQRRequest{
			JobID: 10, ShiftID: 20, Date: "10/09/2026",
		})
		assert.Equal(t, errors.InvalidRequest, err)
	})

	t.Run("shift belongs to another job", func(t *testing.T) {
		svc, _ := newQRFixture()
		_, err := svc.IssueQR(context.Background(), &dto.IssueQRRequest{
			JobID: 99, ShiftID: 20, Date: "2026-09-10",
		})
		assert.Equal(t, errors.ShiftNotFound, err)
	})

	t.Run("no occurrence on date", func(t *testing.T) {
		svc, _ := newQRFixture()
		_, err := svc.IssueQR(context.Background(), &dto.IssueQRRequest{
			JobID: 10, ShiftID: 20, Date: "2026-09-11",
		})
		assert.Equal(t, errors.OccurrenceNotFound, err)
	})

	t.Run("shift already ended", func(t *testing.T) {
		svc, _ := newQRFixture()
		svc.now = func() time.Time { return testStart.Add(9 * time.Hour) }
		_, err := svc.IssueQR(context.Background(), &dto.IssueQRRequest{
			JobID: 10, ShiftID: 20, Date: "2026-09-10",
		})
		assert.Equal(t, errors.ShiftAlreadyEnded, err)
	})
}
