package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"HustleHeroes/internal/model/dto"
	"HustleHeroes/internal/service"
	"HustleHeroes/pkg/response"
)

// IssueQR 雇主侧为某个开班日签发打卡二维码
// POST /v1/qr-codes
func IssueQR(ctx context.Context, c *app.RequestContext) {
	var req dto.IssueQRRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.QR().IssueQR(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
