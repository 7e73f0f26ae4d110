package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/EHTK1/coworking-booking-app/backend/internal/dto"
	"github.com/EHTK1/coworking-booking-app/backend/internal/service"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/response"
)

// ReservationHandler 预订模块 HTTP 处理器
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// CheckAvailability 查询余位
// GET /api/v1/availability?date=YYYY-MM-DD&slot=MORNING
func (h *ReservationHandler) CheckAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	slot := c.Query("slot")
	if dateStr == "" || slot == "" {
		response.BadRequest(c, 10001, "缺少必填参数 date / slot")
		return
	}

	result, err := h.reservationSvc.CheckAvailability(c.Request.Context(), dateStr, slot)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// Create 创建预订
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reservationSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.Created(c, result)
}

// Cancel 取消预订
// POST /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	reservationID := c.Param("id")
	if reservationID == "" {
		response.BadRequest(c, 10001, "缺少预订 ID")
		return
	}

	result, err := h.reservationSvc.Cancel(c.Request.Context(), reservationID, userID)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 当前用户的生效预订
// GET /api/v1/reservations/me
func (h *ReservationHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAll 管理端预订列表
// GET /api/v1/admin/reservations?date=YYYY-MM-DD&slot=MORNING
func (h *ReservationHandler) ListAll(c *gin.Context) {
	result, err := h.reservationSvc.ListAll(c.Request.Context(), c.Query("date"), c.Query("slot"))
	if err != nil {
		h.handleReservationError(c, err)
		return
	}

	response.OK(c, result)
}

// handleReservationError 统一处理预订模块业务错误
// 基础设施故障不映射为业务错误，落入 default 分支返回 500
func (h *ReservationHandler) handleReservationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 12001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidSlot):
		response.BadRequest(c, 12002, "时段无效，应为 MORNING 或 AFTERNOON")
	case errors.Is(err, service.ErrSlotFull):
		response.Conflict(c, 12003, "该时段工位已约满")
	case errors.Is(err, service.ErrDuplicateBooking):
		response.Conflict(c, 12004, "该时段已有生效预订")
	case errors.Is(err, service.ErrCancelTooLate):
		response.Conflict(c, 12005, "时段已开始，无法取消")
	case errors.Is(err, service.ErrReservationNotFound):
		response.NotFound(c, 12006, "预订不存在")
	case errors.Is(err, service.ErrNotReservationOwner):
		response.Forbidden(c, 12007, "无权操作他人预订")
	default:
		response.InternalError(c)
	}
}
