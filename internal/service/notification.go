package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/config"
	"HustleHeroes/internal/model"
	"HustleHeroes/internal/repository"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/pkg/metrics"
	"HustleHeroes/pkg/sms"
)

// NotificationService 把申请生命周期事件翻译成工人短信。
// 由 worker 进程的消费者驱动，和分配事务完全解耦。
type NotificationService struct {
	store  repository.Store
	sender sms.Client
}

var (
	notificationService *NotificationService
	notificationOnce    sync.Once
)

// Notification 获取通知服务单例
func Notification() *NotificationService {
	notificationOnce.Do(func() {
		notificationService = NewNotificationService(repository.NewStore(), sms.GetClient())
	})
	return notificationService
}

func NewNotificationService(store repository.Store, sender sms.Client) *NotificationService {
	return &NotificationService{store: store, sender: sender}
}

// NotifyApplicationEvent 按事件类型下发对应的短信
func (s *NotificationService) NotifyApplicationEvent(ctx context.Context, msg *model.ApplicationEventMessage) error {
	worker, err := s.store.GetWorker(ctx, msg.WorkerID)
	if err != nil {
		return fmt.Errorf("failed to load worker %d: %w", msg.WorkerID, err)
	}
	if worker.Phone == "" {
		logger.Logger.Warn("Worker has no phone, skipping notification",
			zap.Int64("worker_id", msg.WorkerID),
			zap.String("event_type", string(msg.EventType)),
		)
		return nil
	}

	params := map[string]interface{}{
		"event":    string(msg.EventType),
		"date":     msg.Date,
		"seat":     string(msg.SeatKind),
		"shift_id": msg.ShiftID,
	}
	switch msg.EventType {
	case model.ApplicationEventCancelled, model.ApplicationEventNoShow:
		params["penalty"] = msg.Penalty
		params["penalty_label"] = msg.PenaltyLabel
	case model.ApplicationEventPromoted:
		params["bonus"] = msg.StandbyBonus
	}

	return s.send(ctx, worker.Phone, params)
}

// NotifyCancellationPenalty 下发取消罚金通知
func (s *NotificationService) NotifyCancellationPenalty(ctx context.Context, msg *model.WorkerCancellationMessage) error {
	worker, err := s.store.GetWorker(ctx, msg.WorkerID)
	if err != nil {
		return fmt.Errorf("failed to load worker %d: %w", msg.WorkerID, err)
	}
	if worker.Phone == "" {
		return nil
	}

	params := map[string]interface{}{
		"event":              "cancellation_penalty",
		"date":               msg.Date,
		"penalty":            msg.Penalty,
		"penalty_label":      msg.PenaltyLabel,
		"cancellation_count": msg.CancellationCount,
	}

	return s.send(ctx, worker.Phone, params)
}

func (s *NotificationService) send(ctx context.Context, phone string, params map[string]interface{}) error {
	paramJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal template params: %w", err)
	}

	started := time.Now()
	err = s.sender.SendSingle(ctx, phone,
		config.Cfg.SMSSignName,
		config.Cfg.SMSTemplateCode,
		string(paramJSON),
	)

	status := "success"
	if err != nil {
		status = "failed"
	}
	metrics.RecordSMSSent(ctx, config.Cfg.SMSProvider, status, time.Since(started).Seconds())

	return err
}
