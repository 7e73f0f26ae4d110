package dto

// ── 用户管理模块 DTO ──

// AdminUserResponse 管理端用户列表项
type AdminUserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	ReservationCount int64  `json:"reservation_count"`
	CreatedAt        string `json:"created_at"`
}

// UserListResponse 管理端用户列表响应
type UserListResponse struct {
	List  []AdminUserResponse `json:"list"`
	Total int64               `json:"total"`
}

// StatsResponse 管理端统计响应
type StatsResponse struct {
	TotalUsers            int64 `json:"total_users"`
	TotalReservations     int64 `json:"total_reservations"`
	ConfirmedReservations int64 `json:"confirmed_reservations"`
	CancelledReservations int64 `json:"cancelled_reservations"`
	TotalDesks            int   `json:"total_desks"`
}
