package dto

import "errors"

// ── 场馆配置模块 DTO ──

// UpdateSettingsRequest 更新场馆配置请求（部分更新）
type UpdateSettingsRequest struct {
	TotalDesks         *int `json:"total_desks"          binding:"omitempty,min=1,max=1000"`
	MorningStartHour   *int `json:"morning_start_hour"   binding:"omitempty,min=0,max=23"`
	MorningEndHour     *int `json:"morning_end_hour"     binding:"omitempty,min=0,max=23"`
	AfternoonStartHour *int `json:"afternoon_start_hour" binding:"omitempty,min=0,max=23"`
	AfternoonEndHour   *int `json:"afternoon_end_hour"   binding:"omitempty,min=0,max=23"`
}

// ValidateHours 跨字段校验：每个时段 start < end
// 仅校验请求携带的字段组合后的最终值，caller 传入当前生效配置
func (r *UpdateSettingsRequest) ValidateHours(morningStart, morningEnd, afternoonStart, afternoonEnd int) error {
	if r.MorningStartHour != nil {
		morningStart = *r.MorningStartHour
	}
	if r.MorningEndHour != nil {
		morningEnd = *r.MorningEndHour
	}
	if r.AfternoonStartHour != nil {
		afternoonStart = *r.AfternoonStartHour
	}
	if r.AfternoonEndHour != nil {
		afternoonEnd = *r.AfternoonEndHour
	}

	if morningStart >= morningEnd {
		return errors.New("上午时段开始时间必须早于结束时间")
	}
	if afternoonStart >= afternoonEnd {
		return errors.New("下午时段开始时间必须早于结束时间")
	}
	return nil
}

// SettingsResponse 场馆配置响应
type SettingsResponse struct {
	TotalDesks         int    `json:"total_desks"`
	MorningStartHour   int    `json:"morning_start_hour"`
	MorningEndHour     int    `json:"morning_end_hour"`
	AfternoonStartHour int    `json:"afternoon_start_hour"`
	AfternoonEndHour   int    `json:"afternoon_end_hour"`
	UpdatedAt          string `json:"updated_at"`
}
