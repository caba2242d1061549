package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/config"
	"HustleHeroes/internal/model"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/repository"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/pkg/qrcode"
)

// QRService 雇主侧打卡二维码签发。
// token 绑定 (job, shift, date) 与有效窗口，工人扫码打卡时由服务端校验。
type QRService struct {
	store repository.Store
	issue func(jobID, shiftID int64, date string, validFrom, validUntil time.Time) (string, error)
	now   func() time.Time
}

var (
	qrService *QRService
	qrOnce    sync.Once
)

// QR 获取二维码服务单例
func QR() *QRService {
	qrOnce.Do(func() {
		qrService = NewQRService(repository.NewStore())
	})
	return qrService
}

func NewQRService(store repository.Store) *QRService {
	return &QRService{store: store, issue: qrcode.Issue, now: time.Now}
}

// IssueQR 为一个开班日签发打卡二维码。
// 窗口从开班前 QR_VALID_MINUTES 分钟开到班次结束，迟到打卡仍可扫同一张码。
func (s *QRService) IssueQR(ctx context.Context, req *dto.IssueQRRequest) (*dto.IssueQRData, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, errors.InvalidRequest
	}

	shift, err := s.store.GetShift(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift.JobID != req.JobID {
		return nil, errors.ShiftNotFound
	}

	occ, err := s.store.GetOccurrence(ctx, req.ShiftID, req.Date)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(occ.EndAt) {
		return nil, errors.ShiftAlreadyEnded
	}

	validFrom := occ.StartAt.Add(-time.Duration(config.Cfg.QRValidMinutes) * time.Minute)
	validUntil := occ.EndAt

	token, err := s.issue(req.JobID, req.ShiftID, req.Date, validFrom, validUntil)
	if err != nil {
		return nil, err
	}

	record := &model.ShiftQRCode{
		JobID:      req.JobID,
		ShiftID:    req.ShiftID,
		Date:       req.Date,
		Token:      token,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
	}
	if err := s.store.SaveQRCode(ctx, record); err != nil {
		return nil, err
	}

	logger.Logger.Info("Issued clock-in QR code",
		zap.Int64("job_id", req.JobID),
		zap.Int64("shift_id", req.ShiftID),
		zap.String("date", req.Date),
		zap.Time("valid_until", validUntil),
	)

	return &dto.IssueQRData{Token: token, ValidFrom: validFrom, ValidUntil: validUntil}, nil
}
