package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/EHTK1/coworking-booking-app/backend/internal/dto"
	"github.com/EHTK1/coworking-booking-app/backend/internal/service"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/response"
)

// SettingsHandler 场馆配置模块 HTTP 处理器
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// GetSettings 获取场馆配置（不存在时按默认值初始化）
// GET /api/v1/admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	cfg, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}

	response.OK(c, cfg)
}

// UpdateSettings 更新场馆配置（部分更新）
// PATCH /api/v1/admin/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cfg, err := h.settingsSvc.Update(c.Request.Context(), &req)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}

	response.OK(c, cfg)
}

// handleSettingsError 统一处理场馆配置模块业务错误
func (h *SettingsHandler) handleSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlotHours):
		response.BadRequest(c, 13001, "时段配置无效")
	default:
		response.InternalError(c)
	}
}
