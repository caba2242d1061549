package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"HustleHeroes/internal/model"
	"HustleHeroes/pkg/logger"
	"HustleHeroes/storage/mq"
)

// Producer 把分配事务提交后的领域事件推到 RabbitMQ。
// 发布即发即忘：失败由调用方记日志，不回滚业务。
type Producer struct{}

func NewProducer() *Producer {
	return &Producer{}
}

// PublishApplicationEvent 发布申请生命周期事件
func (p *Producer) PublishApplicationEvent(ctx context.Context, msg *model.ApplicationEventMessage) error {
	err := mq.PublishMessage(
		mq.EventsExchange,
		mq.ApplicationEventsRoutingKey,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish application event",
			zap.String("message_id", msg.MessageID),
			zap.String("event_type", string(msg.EventType)),
			zap.Int64("application_id", msg.ApplicationID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published application event",
		zap.String("message_id", msg.MessageID),
		zap.String("event_type", string(msg.EventType)),
		zap.Int64("application_id", msg.ApplicationID),
		zap.Int64("worker_id", msg.WorkerID),
	)
	return nil
}

// PublishNoShowCheck 发布延迟的定点爽约检查，延迟到开班加宽限期后触发
func (p *Producer) PublishNoShowCheck(ctx context.Context, msg *model.NoShowCheckMessage, delay time.Duration) error {
	err := mq.PublishDelayedMessage(
		mq.DelayedExchange,
		mq.NoShowChecksRoutingKey,
		delay,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish no-show check",
			zap.String("message_id", msg.MessageID),
			zap.Int64("application_id", msg.ApplicationID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published no-show check",
		zap.String("message_id", msg.MessageID),
		zap.Int64("application_id", msg.ApplicationID),
		zap.Duration("delay", delay),
	)
	return nil
}

// PublishWorkerCancellation 发布工人取消记录，供外部信誉/报表服务消费
func (p *Producer) PublishWorkerCancellation(ctx context.Context, msg *model.WorkerCancellationMessage) error {
	err := mq.PublishMessage(
		mq.EventsExchange,
		mq.WorkerCancellationsRoutingKey,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish worker cancellation",
			zap.String("message_id", msg.MessageID),
			zap.Int64("worker_id", msg.WorkerID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published worker cancellation",
		zap.String("message_id", msg.MessageID),
		zap.Int64("worker_id", msg.WorkerID),
		zap.Int("cancellation_count", msg.CancellationCount),
	)
	return nil
}
