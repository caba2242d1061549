package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/internal/cache"
	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/storage/mq"
)

// NotificationService worker 侧的通知出口，落地实现走短信
type NotificationService interface {
	NotifyApplicationEvent(ctx context.Context, msg *model.ApplicationEventMessage) error
	NotifyCancellationPenalty(ctx context.Context, msg *model.WorkerCancellationMessage) error
}

var notificationService NotificationService

// SetNotificationService 设置通知服务（在 worker 启动时调用）
func SetNotificationService(s NotificationService) {
	notificationService = s
}

// NoShowChecker 定点爽约检查的执行方，落地实现是分配服务
type NoShowChecker interface {
	CheckNoShow(ctx context.Context, applicationID int64) error
}

var noShowChecker NoShowChecker

// SetNoShowChecker 设置爽约检查服务（在 worker 启动时调用）
func SetNoShowChecker(c NoShowChecker) {
	noShowChecker = c
}

// StartApplicationEventsConsumer 消费申请生命周期事件并下发通知。
// MessageID 做幂等：重复投递直接 Ack 跳过。
func StartApplicationEventsConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.ApplicationEventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal application event: %w", err)
		}

		first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，宁重不丢
		} else if !first {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		if notificationService != nil {
			if err := notificationService.NotifyApplicationEvent(ctx, &msg); err != nil {
				// 处理失败，取消标记允许重试
				if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
					logger.Logger.Warn("Failed to unmark message",
						zap.String("message_id", msg.MessageID),
						zap.Error(unmarkErr),
					)
				}
				return fmt.Errorf("failed to notify application event: %w", err)
			}
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.ApplicationEventsQueue,
		ConsumerTag:   "application_events_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartWorkerCancellationsConsumer 消费取消记录并下发罚金通知
func StartWorkerCancellationsConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.WorkerCancellationMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal worker cancellation: %w", err)
		}

		first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !first {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Recorded worker cancellation",
			zap.Int64("worker_id", msg.WorkerID),
			zap.Int64("application_id", msg.ApplicationID),
			zap.Int("penalty", msg.Penalty),
			zap.Int("cancellation_count", msg.CancellationCount),
		)

		if notificationService != nil {
			if err := notificationService.NotifyCancellationPenalty(ctx, &msg); err != nil {
				if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
					logger.Logger.Warn("Failed to unmark message",
						zap.String("message_id", msg.MessageID),
						zap.Error(unmarkErr),
					)
				}
				return fmt.Errorf("failed to notify cancellation penalty: %w", err)
			}
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.WorkerCancellationsQueue,
		ConsumerTag:   "worker_cancellations_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartNoShowChecksConsumer 消费延迟投递的定点爽约检查。
// 检查本身幂等（终态守卫吸收重复），MessageID 去重只是省一次事务。
func StartNoShowChecksConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.NoShowCheckMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal no-show check: %w", err)
		}

		first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !first {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		if noShowChecker != nil {
			if err := noShowChecker.CheckNoShow(ctx, msg.ApplicationID); err != nil {
				if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
					logger.Logger.Warn("Failed to unmark message",
						zap.String("message_id", msg.MessageID),
						zap.Error(unmarkErr),
					)
				}
				return fmt.Errorf("failed to run no-show check: %w", err)
			}
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.NoShowChecksQueue,
		ConsumerTag:   "noshow_checks_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"application_events", StartApplicationEventsConsumer},
		{"worker_cancellations", StartWorkerCancellationsConsumer},
		{"noshow_checks", StartNoShowChecksConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
