package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EHTK1/coworking-booking-app/backend/internal/dto"
	"github.com/EHTK1/coworking-booking-app/backend/internal/model"
	"github.com/EHTK1/coworking-booking-app/backend/internal/repository"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/metrics"
)

// ── 预订模块业务错误 ──

var (
	ErrInvalidDate         = errors.New("日期格式无效")
	ErrInvalidSlot         = errors.New("时段无效")
	ErrSlotFull            = errors.New("该时段工位已约满")
	ErrDuplicateBooking    = errors.New("该时段已有生效预订")
	ErrCancelTooLate       = errors.New("时段已开始，无法取消")
	ErrReservationNotFound = errors.New("预订不存在")
	ErrNotReservationOwner = errors.New("无权操作他人预订")
)

// ReservationService 预订准入与取消业务接口
//
// 并发语义：
//   - 同一用户重复预订由 uniq_active_reservation 部分唯一索引兜底，
//     预检与插入之间的竞态统一收敛为 ErrDuplicateBooking；
//   - 容量没有对应的数据库约束，临界并发下存在少量超订窗口，
//     与上游实现保持同一取舍（去重收紧、容量尽力而为）。
type ReservationService interface {
	// CheckAvailability 查询指定日期与时段的余位（只读、仅供参考）
	CheckAvailability(ctx context.Context, dateStr, slot string) (*dto.AvailabilityResponse, error)
	// Create 创建预订：去重预检 → 容量检查 → 插入（唯一冲突转为重复错误）
	Create(ctx context.Context, userID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	// Cancel 取消预订：归属校验 + 截止时间校验，软删除
	Cancel(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error)
	// ListMine 当前用户的生效预订，按日期升序
	ListMine(ctx context.Context, userID string) ([]dto.ReservationResponse, error)
	// ListAll 管理端按日期/时段筛选生效预订（含预订人）
	ListAll(ctx context.Context, dateStr, slot string) ([]dto.AdminReservationResponse, error)
}

type reservationService struct {
	repo     *repository.Repository
	settings SettingsService
	notifier Notifier
	metrics  *metrics.Metrics
	clock    Clock
	loc      *time.Location
	logger   *zap.Logger
}

// NewReservationService 创建 ReservationService 实例
func NewReservationService(
	repo *repository.Repository,
	settings SettingsService,
	notifier Notifier,
	m *metrics.Metrics,
	clock Clock,
	loc *time.Location,
	logger *zap.Logger,
) ReservationService {
	return &reservationService{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		metrics:  m,
		clock:    clock,
		loc:      loc,
		logger:   logger,
	}
}

// parseDate 解析 YYYY-MM-DD 并归一化为场馆时区当日零点
func (s *reservationService) parseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.DateLayout, dateStr, s.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// normalizeDate 剥离时间部分，保留场馆时区的日历日
func (s *reservationService) normalizeDate(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// ────────────────────── CheckAvailability ──────────────────────

func (s *reservationService) CheckAvailability(ctx context.Context, dateStr, slot string) (*dto.AvailabilityResponse, error) {
	if !model.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}
	date, err := s.parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	available, total, err := s.availability(ctx, date, slot)
	if err != nil {
		return nil, err
	}

	return &dto.AvailabilityResponse{
		Date:      date.Format(dto.DateLayout),
		Slot:      slot,
		Available: available,
		Total:     total,
	}, nil
}

// availability 计算余位：max(0, 总工位数 - 生效预订数)
// 结果仅供参考，不持有任何锁；权威判断在 Create 内再次执行
func (s *reservationService) availability(ctx context.Context, date time.Time, slot string) (available, total int, err error) {
	cfg, err := s.settings.GetOrInit(ctx)
	if err != nil {
		return 0, 0, err
	}

	count, err := s.repo.Reservation.CountConfirmed(ctx, date, slot)
	if err != nil {
		s.logger.Error("统计生效预订失败", zap.Error(err))
		return 0, 0, err
	}

	available = cfg.TotalDesks - int(count)
	if available < 0 {
		available = 0
	}
	return available, cfg.TotalDesks, nil
}

// ────────────────────── Create ──────────────────────

func (s *reservationService) Create(ctx context.Context, userID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if !model.ValidSlot(req.Slot) {
		return nil, ErrInvalidSlot
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	// 1. 去重预检：同一用户同日同时段已有生效预订则拒绝
	_, err = s.repo.Reservation.FindConfirmed(ctx, userID, date, req.Slot)
	if err == nil {
		s.metrics.AdmissionRejected.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateBooking
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询既有预订失败", zap.Error(err))
		return nil, err
	}

	// 2. 容量检查（与预检之间无锁，权威性依赖第 3 步的唯一索引兜底去重；
	//    容量本身无约束兜底，见接口注释）
	available, _, err := s.availability(ctx, date, req.Slot)
	if err != nil {
		return nil, err
	}
	if available <= 0 {
		s.metrics.AdmissionRejected.WithLabelValues("full").Inc()
		return nil, ErrSlotFull
	}

	// 3. 插入：并发落败方触发唯一索引冲突，统一转为重复预订错误
	res := &model.Reservation{
		UserID: userID,
		Date:   date,
		Slot:   req.Slot,
		Status: model.StatusConfirmed,
	}
	if err := s.repo.Reservation.Create(ctx, res); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.metrics.AdmissionRejected.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicateBooking
		}
		s.logger.Error("创建预订失败", zap.Error(err))
		return nil, err
	}

	s.metrics.ReservationsCreated.Inc()
	s.logger.Info("预订创建成功",
		zap.String("reservation_id", res.ReservationID),
		zap.String("user_id", userID),
		zap.String("date", req.Date),
		zap.String("slot", req.Slot),
	)

	// 状态已提交，确认通知异步派发，失败只记日志
	s.notifyAsync(res, NotificationConfirmation)

	return reservationToDTO(res), nil
}

// ────────────────────── Cancel ──────────────────────

func (s *reservationService) Cancel(ctx context.Context, reservationID, userID string) (*dto.ReservationResponse, error) {
	res, err := s.repo.Reservation.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("查询预订失败", zap.Error(err))
		return nil, err
	}

	// 归属校验：仅本人可取消，管理员亦无例外
	if res.UserID != userID {
		return nil, ErrNotReservationOwner
	}

	// 已取消视同不存在（沿用上游的简化，不单列"已取消"错误）
	if res.Status == model.StatusCancelled {
		return nil, ErrReservationNotFound
	}

	// 截止校验：当前时刻不得晚于时段开始时刻
	cfg, err := s.settings.GetOrInit(ctx)
	if err != nil {
		return nil, err
	}
	y, m, d := res.Date.In(s.loc).Date()
	slotStart := time.Date(y, m, d, cfg.SlotStartHour(res.Slot), 0, 0, 0, s.loc)
	if !s.clock.Now().Before(slotStart) {
		return nil, ErrCancelTooLate
	}

	// 软删除：CONFIRMED → CANCELLED，单向且终态
	res.Status = model.StatusCancelled
	if err := s.repo.Reservation.Update(ctx, res); err != nil {
		s.logger.Error("取消预订失败", zap.Error(err))
		return nil, err
	}

	s.metrics.ReservationsCancelled.Inc()
	s.logger.Info("预订已取消",
		zap.String("reservation_id", res.ReservationID),
		zap.String("user_id", userID),
	)

	s.notifyAsync(res, NotificationCancellation)

	return reservationToDTO(res), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *reservationService) ListMine(ctx context.Context, userID string) ([]dto.ReservationResponse, error) {
	list, err := s.repo.Reservation.ListByUser(ctx, userID, model.StatusConfirmed)
	if err != nil {
		s.logger.Error("查询用户预订失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReservationResponse, 0, len(list))
	for i := range list {
		result = append(result, *reservationToDTO(&list[i]))
	}
	return result, nil
}

func (s *reservationService) ListAll(ctx context.Context, dateStr, slot string) ([]dto.AdminReservationResponse, error) {
	var date *time.Time
	if dateStr != "" {
		d, err := s.parseDate(dateStr)
		if err != nil {
			return nil, err
		}
		date = &d
	}
	if slot != "" && !model.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}

	list, err := s.repo.Reservation.ListConfirmed(ctx, date, slot)
	if err != nil {
		s.logger.Error("查询预订列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AdminReservationResponse, 0, len(list))
	for i := range list {
		item := dto.AdminReservationResponse{
			ID:        list[i].ReservationID,
			Date:      list[i].Date.Format(dto.DateLayout),
			Slot:      list[i].Slot,
			Status:    list[i].Status,
			CreatedAt: list[i].CreatedAt.Format(time.RFC3339),
		}
		if list[i].User != nil {
			item.User = &dto.UserResponse{
				ID:    list[i].User.UserID,
				Email: list[i].User.Email,
				Name:  list[i].User.Name,
				Role:  list[i].User.Role,
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// ────────────────────── 通知派发 ──────────────────────

// notifyAsync 状态提交后异步派发通知；任何失败只记日志，不影响业务结果
func (s *reservationService) notifyAsync(res *model.Reservation, kind NotificationKind) {
	if s.notifier == nil {
		return
	}

	resCopy := *res
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		user, err := s.repo.User.GetByID(ctx, resCopy.UserID)
		if err != nil {
			s.logger.Warn("通知派发失败：查询用户出错",
				zap.String("reservation_id", resCopy.ReservationID), zap.Error(err))
			return
		}
		cfg, err := s.settings.GetOrInit(ctx)
		if err != nil {
			s.logger.Warn("通知派发失败：读取配置出错",
				zap.String("reservation_id", resCopy.ReservationID), zap.Error(err))
			return
		}
		if err := s.notifier.Notify(ctx, user, &resCopy, cfg, kind); err != nil {
			s.logger.Warn("预订通知发送失败",
				zap.String("reservation_id", resCopy.ReservationID),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
	}()
}

// reservationToDTO 模型 → 响应
func reservationToDTO(res *model.Reservation) *dto.ReservationResponse {
	return &dto.ReservationResponse{
		ID:        res.ReservationID,
		UserID:    res.UserID,
		Date:      res.Date.Format(dto.DateLayout),
		Slot:      res.Slot,
		Status:    res.Status,
		CreatedAt: res.CreatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/reservation_service.go
