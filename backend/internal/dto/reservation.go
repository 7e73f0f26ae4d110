package dto

// ── 预订模块 DTO ──

// DateLayout 预订日期的统一格式
const DateLayout = "2006-01-02"

// CreateReservationRequest 创建预订请求
type CreateReservationRequest struct {
	Date string `json:"date" binding:"required"`
	Slot string `json:"slot" binding:"required,oneof=MORNING AFTERNOON"`
}

// ReservationResponse 预订响应
type ReservationResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// AvailabilityResponse 余位查询响应
type AvailabilityResponse struct {
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

// AdminReservationResponse 管理端预订列表项（含预订人信息）
type AdminReservationResponse struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Slot      string        `json:"slot"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"created_at"`
	User      *UserResponse `json:"user,omitempty"`
}

// ReminderRunResponse 提醒任务执行结果
type ReminderRunResponse struct {
	Sent int `json:"sent"`
}
