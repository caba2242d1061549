package service

import (
	"context"
	"time"

	"HustleHeroes/internal/model"
)

// EventPublisher 申请生命周期事件的出口，落地实现走 RabbitMQ。
// 发布失败只记日志，不回滚已提交的分配事务。
type EventPublisher interface {
	PublishApplicationEvent(ctx context.Context, msg *model.ApplicationEventMessage) error
	PublishWorkerCancellation(ctx context.Context, msg *model.WorkerCancellationMessage) error
	// PublishNoShowCheck 经延迟交换机投递定点爽约检查
	PublishNoShowCheck(ctx context.Context, msg *model.NoShowCheckMessage, delay time.Duration) error
}
