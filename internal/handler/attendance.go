package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HustleHeroes/internal/middleware"
	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/service"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/response"
)

// ClockIn 扫码打卡上班
// POST /v1/applications/:id/clock-in
func ClockIn(ctx context.Context, c *app.RequestContext) {
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

	var req dto.ClockInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Allocation().ClockIn(ctx, workerID, applicationID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ClockOut 打卡下班
// POST /v1/applications/:id/clock-out
func ClockOut(ctx context.Context, c *app.RequestContext) {
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

	result, err := service.Allocation().ClockOut(ctx, workerID, applicationID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
