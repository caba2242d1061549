package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"HustleHeroes/internal/middleware"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/service"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/response"
)

// Apply 报名班次
// POST /v1/applications
func Apply(ctx context.Context, c *app.RequestContext) {
	workerID, ok := middleware.GetWorkerID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidUserID)
		return
	}

	var req dto.ApplyRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Allocation().Apply(ctx, workerID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Cancel 取消申请
// POST /v1/applications/:id/cancel
func Cancel(ctx context.Context, c *app.RequestContext) {
	workerID, ok := middleware.GetWorkerID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidUserID)
		return
	}

	applicationID, err := pathID(c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.CancelRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Allocation().Cancel(ctx, workerID, applicationID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Complete 完成班次（双方打卡齐全后结班）
// POST /v1/applications/:id/complete
func Complete(ctx context.Context, c *app.RequestContext) {
	workerID, ok := middleware.GetWorkerID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidUserID)
		return
	}

	applicationID, err := pathID(c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	result, err := service.Allocation().Complete(ctx, workerID, applicationID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ListApplications 分页查询工人自己的申请记录
// GET /v1/applications
func ListApplications(ctx context.Context, c *app.RequestContext) {
	workerID, ok := middleware.GetWorkerID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.InvalidUserID)
		return
	}

	var query dto.ApplicationQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	items, total, err := service.Allocation().ListApplications(ctx, workerID, &query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{
		"total": total,
	})
}

// pathID 解析路径参数 :id（申请 public_id）
func pathID(c *app.RequestContext) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.InvalidRequest
	}
	return id, nil
}
