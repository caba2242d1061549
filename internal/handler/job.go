package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"HustleHeroes/internal/service"
	"HustleHeroes/pkg/errors"
	"HustleHeroes/pkg/response"
)

// ListJobs 岗位浏览列表
// GET /v1/jobs
func ListJobs(ctx context.Context, c *app.RequestContext) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := service.Catalog().ListJobs(ctx, limit, offset)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{
		"total": total,
	})
}

// GetJobDetail 岗位详情与剩余名额
// GET /v1/jobs/:id
func GetJobDetail(ctx context.Context, c *app.RequestContext) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	detail, err := service.Catalog().JobDetail(ctx, jobID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, detail)
}
