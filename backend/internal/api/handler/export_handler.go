package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EHTK1/coworking-booking-app/backend/internal/service"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器（管理端）
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportReservations 导出某日预订名单为 Excel
// GET /api/v1/admin/export/reservations?date=YYYY-MM-DD
func (h *ExportHandler) ExportReservations(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		response.BadRequest(c, 10001, "缺少必填参数 date")
		return
	}

	buf, filename, err := h.exportSvc.ExportDaySheet(c.Request.Context(), dateStr)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// handleExportError 统一处理导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 12001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrExportNoReservations):
		response.NotFound(c, 14001, "该日期无生效预订")
	default:
		response.InternalError(c)
	}
}
