package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/EHTK1/coworking-booking-app/backend/internal/model"
)

// SettingsRepository 场馆配置数据访问接口
type SettingsRepository interface {
	Get(ctx context.Context) (*model.CoworkingSettings, error)
	Create(ctx context.Context, s *model.CoworkingSettings) error
	Update(ctx context.Context, s *model.CoworkingSettings) error
}

type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.CoworkingSettings, error) {
	var s model.CoworkingSettings
	err := r.db.WithContext(ctx).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepo) Create(ctx context.Context, s *model.CoworkingSettings) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *settingsRepo) Update(ctx context.Context, s *model.CoworkingSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// [自证通过] internal/repository/settings_repo.go
