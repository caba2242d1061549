package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 分配与通知链路的指标集合
type OTelMetrics struct {
	// 分配相关指标
	ApplicationsTotal     metric.Int64Counter
	AllocationRetryTotal  metric.Int64Counter
	StandbyPromotionTotal metric.Int64Counter
	PenaltyAmountTotal    metric.Int64Counter
	NoShowMarkedTotal     metric.Int64Counter

	// 短信相关指标
	SMSSentTotal    metric.Int64Counter
	SMSSendDuration metric.Float64Histogram
}

var (
	// 全局指标实例，未初始化时 Record* 全部为空操作
	metrics *OTelMetrics
	meter   = otel.Meter("hustleheroes")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.ApplicationsTotal, err = meter.Int64Counter(
		"applications_total",
		metric.WithDescription("Total number of application lifecycle events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.AllocationRetryTotal, err = meter.Int64Counter(
		"allocation_retry_total",
		metric.WithDescription("Total number of allocation transaction retries after lock contention"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	m.StandbyPromotionTotal, err = meter.Int64Counter(
		"standby_promotion_total",
		metric.WithDescription("Total number of standby applications promoted to primary"),
		metric.WithUnit("{promotion}"),
	)
	if err != nil {
		return err
	}

	m.PenaltyAmountTotal, err = meter.Int64Counter(
		"penalty_amount_total",
		metric.WithDescription("Total penalty amount assessed on cancellations and no-shows"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return err
	}

	m.NoShowMarkedTotal, err = meter.Int64Counter(
		"noshow_marked_total",
		metric.WithDescription("Total number of applications marked no-show by the sweep"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return err
	}

	m.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	m.SMSSendDuration, err = meter.Float64Histogram(
		"sms_send_duration_seconds",
		metric.WithDescription("Time spent sending SMS in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordApplicationEvent 记录一条申请生命周期事件
func RecordApplicationEvent(ctx context.Context, eventType, seatKind string) {
	if metrics == nil {
		return
	}
	metrics.ApplicationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("seat_kind", seatKind),
	))
}

// RecordAllocationRetry 记录一次行锁冲突后的重试
func RecordAllocationRetry(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.AllocationRetryTotal.Add(ctx, 1)
}

// RecordStandbyPromotion 记录一次候补转正
func RecordStandbyPromotion(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.StandbyPromotionTotal.Add(ctx, 1)
}

// RecordPenalty 记录罚金
func RecordPenalty(ctx context.Context, amount int, label string) {
	if metrics == nil || amount <= 0 {
		return
	}
	metrics.PenaltyAmountTotal.Add(ctx, int64(amount), metric.WithAttributes(
		attribute.String("tier", label),
	))
}

// RecordNoShowMarked 记录爽约扫描标记数
func RecordNoShowMarked(ctx context.Context, count int) {
	if metrics == nil || count <= 0 {
		return
	}
	metrics.NoShowMarkedTotal.Add(ctx, int64(count))
}

// RecordSMSSent 记录短信发送结果
func RecordSMSSent(ctx context.Context, provider, status string, duration float64) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("status", status),
	}
	metrics.SMSSentTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.SMSSendDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}
