package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/EHTK1/coworking-booking-app/backend/internal/dto"
	"github.com/EHTK1/coworking-booking-app/backend/internal/service"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/response"
)

// CronHandler 定时任务触发接口（供外部调度器调用）
type CronHandler struct {
	reminderSvc service.ReminderService
}

// NewCronHandler 创建 CronHandler
func NewCronHandler(reminderSvc service.ReminderService) *CronHandler {
	return &CronHandler{reminderSvc: reminderSvc}
}

// SendReminders 扫描并发送 24 小时预订提醒
// POST /api/v1/cron/send-reminders
func (h *CronHandler) SendReminders(c *gin.Context) {
	sent, err := h.reminderSvc.SendReservationReminders(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, dto.ReminderRunResponse{Sent: sent})
}
