package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EHTK1/coworking-booking-app/backend/internal/dto"
	"github.com/EHTK1/coworking-booking-app/backend/internal/model"
	"github.com/EHTK1/coworking-booking-app/backend/internal/repository"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/metrics"
)

// ── 测试辅助 ──

func setupTestReservationService() (ReservationService, *mockReservationRepo, *mockSettingsRepo, *fixedClock) {
	resRepo := newMockReservationRepo()
	settingsRepo := newMockSettingsRepo()
	repo := &repository.Repository{
		User:        newMockUserRepo(),
		Reservation: resRepo,
		Settings:    settingsRepo,
	}
	logger := zap.NewNop()
	settings := NewSettingsService(repo, logger)
	clock := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewReservationService(repo, settings, nil, metrics.New(), clock, time.UTC, logger)
	return svc, resRepo, settingsRepo, clock
}

func seedReservation(repo *mockReservationRepo, id, userID string, date time.Time, slot, status string) *model.Reservation {
	res := &model.Reservation{
		ReservationID: id,
		UserID:        userID,
		Date:          date,
		Slot:          slot,
		Status:        status,
	}
	repo.reservations[id] = res
	return res
}

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// ── CheckAvailability 测试 ──

func TestReservationService_CheckAvailability_Formula(t *testing.T) {
	svc, resRepo, _, _ := setupTestReservationService()

	for i := 0; i < 3; i++ {
		seedReservation(resRepo, fmt.Sprintf("res-%d", i), fmt.Sprintf("user-%d", i),
			testDay, model.SlotMorning, model.StatusConfirmed)
	}
	// 已取消与其他时段不计入
	seedReservation(resRepo, "res-x", "user-x", testDay, model.SlotMorning, model.StatusCancelled)
	seedReservation(resRepo, "res-y", "user-y", testDay, model.SlotAfternoon, model.StatusConfirmed)

	result, err := svc.CheckAvailability(context.Background(), "2026-03-02", model.SlotMorning)
	if err != nil {
		t.Fatalf("CheckAvailability 应成功: %v", err)
	}
	if result.Available != 7 {
		t.Errorf("期望Available=7，实际=%d", result.Available)
	}
	if result.Total != 10 {
		t.Errorf("期望Total=10，实际=%d", result.Total)
	}
}

func TestReservationService_CheckAvailability_NeverNegative(t *testing.T) {
	svc, resRepo, settingsRepo, _ := setupTestReservationService()

	// 配置收缩后存量预订可能超过容量，余位应钳制为 0
	settingsRepo.settings = &model.CoworkingSettings{
		Singleton: true, TotalDesks: 2,
		MorningStartHour: 8, MorningEndHour: 13,
		AfternoonStartHour: 13, AfternoonEndHour: 18,
	}
	for i := 0; i < 5; i++ {
		seedReservation(resRepo, fmt.Sprintf("res-%d", i), fmt.Sprintf("user-%d", i),
			testDay, model.SlotMorning, model.StatusConfirmed)
	}

	result, err := svc.CheckAvailability(context.Background(), "2026-03-02", model.SlotMorning)
	if err != nil {
		t.Fatalf("CheckAvailability 应成功: %v", err)
	}
	if result.Available != 0 {
		t.Errorf("余位不应为负，期望0，实际=%d", result.Available)
	}
}

func TestReservationService_CheckAvailability_LazyInitSettings(t *testing.T) {
	svc, _, settingsRepo, _ := setupTestReservationService()

	result, err := svc.CheckAvailability(context.Background(), "2026-03-02", model.SlotMorning)
	if err != nil {
		t.Fatalf("CheckAvailability 应成功: %v", err)
	}
	if result.Available != 10 || result.Total != 10 {
		t.Errorf("首次查询应按默认配置返回 10/10，实际=%d/%d", result.Available, result.Total)
	}
	if settingsRepo.createCalls != 1 {
		t.Errorf("配置应被懒初始化恰好一次，实际=%d", settingsRepo.createCalls)
	}
}

func TestReservationService_CheckAvailability_InvalidInput(t *testing.T) {
	svc, _, _, _ := setupTestReservationService()

	if _, err := svc.CheckAvailability(context.Background(), "2026-03-02", "EVENING"); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("期望 ErrInvalidSlot，实际: %v", err)
	}
	if _, err := svc.CheckAvailability(context.Background(), "02/03/2026", model.SlotMorning); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

// ── Create 测试 ──

func TestReservationService_Create_Success(t *testing.T) {
	svc, _, _, _ := setupTestReservationService()

	req := &dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotMorning}
	result, err := svc.Create(context.Background(), "user-001", req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.StatusConfirmed {
		t.Errorf("期望Status=CONFIRMED，实际=%s", result.Status)
	}
	if result.Date != "2026-03-02" || result.Slot != model.SlotMorning {
		t.Errorf("响应日期/时段不符: %s %s", result.Date, result.Slot)
	}
}

func TestReservationService_Create_Duplicate(t *testing.T) {
	svc, _, _, _ := setupTestReservationService()

	req := &dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotMorning}
	if _, err := svc.Create(context.Background(), "user-001", req); err != nil {
		t.Fatalf("首次 Create 应成功: %v", err)
	}

	_, err := svc.Create(context.Background(), "user-001", req)
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Errorf("期望 ErrDuplicateBooking，实际: %v", err)
	}
}

func TestReservationService_Create_DuplicateOnlyWithinSlot(t *testing.T) {
	svc, _, _, _ := setupTestReservationService()

	// 同日不同时段、不同日同时段均不构成重复
	if _, err := svc.Create(context.Background(), "user-001",
		&dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotMorning}); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-001",
		&dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotAfternoon}); err != nil {
		t.Errorf("同日下午时段应可预订: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-001",
		&dto.CreateReservationRequest{Date: "2026-03-03", Slot: model.SlotMorning}); err != nil {
		t.Errorf("次日同时段应可预订: %v", err)
	}
}

func TestReservationService_Create_Full(t *testing.T) {
	svc, _, settingsRepo, _ := setupTestReservationService()

	settingsRepo.settings = &model.CoworkingSettings{
		Singleton: true, TotalDesks: 2,
		MorningStartHour: 8, MorningEndHour: 13,
		AfternoonStartHour: 13, AfternoonEndHour: 18,
	}

	req := &dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotMorning}
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(context.Background(), fmt.Sprintf("user-%d", i), req); err != nil {
			t.Fatalf("第 %d 次 Create 应成功: %v", i+1, err)
		}
	}

	_, err := svc.Create(context.Background(), "user-late", req)
	if !errors.Is(err, ErrSlotFull) {
		t.Errorf("满员后期望 ErrSlotFull，实际: %v", err)
	}
}

// 容量为 1 时：A 预订成功，B 被拒；A 取消后 B 预订成功
func TestReservationService_Create_SingleDeskHandover(t *testing.T) {
	svc, _, settingsRepo, clock := setupTestReservationService()

	settingsRepo.settings = &model.CoworkingSettings{
		Singleton: true, TotalDesks: 1,
		MorningStartHour: 8, MorningEndHour: 13,
		AfternoonStartHour: 13, AfternoonEndHour: 18,
	}
	clock.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req := &dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotMorning}

	created, err := svc.Create(context.Background(), "user-a", req)
	if err != nil {
		t.Fatalf("A 预订应成功: %v", err)
	}

	if _, err := svc.Create(context.Background(), "user-b", req); !errors.Is(err, ErrSlotFull) {
		t.Fatalf("B 应因满员被拒，实际: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), created.ID, "user-a"); err != nil {
		t.Fatalf("A 取消应成功: %v", err)
	}

	if _, err := svc.Create(context.Background(), "user-b", req); err != nil {
		t.Errorf("A 取消后 B 预订应成功: %v", err)
	}
}

// 预检通过但插入时撞上唯一索引（并发落败方），应统一转为重复错误
func TestReservationService_Create_RaceConvertedToDuplicate(t *testing.T) {
	svc, resRepo, _, _ := setupTestReservationService()

	resRepo.createErr = gorm.ErrDuplicatedKey

	req := &dto.CreateReservationRequest{Date: "2026-03-02", Slot: model.SlotMorning}
	_, err := svc.Create(context.Background(), "user-001", req)
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Errorf("期望 ErrDuplicateBooking，实际: %v", err)
	}
}

func TestReservationService_Create_InvalidInput(t *testing.T) {
	svc, _, _, _ := setupTestReservationService()

	if _, err := svc.Create(context.Background(), "user-001",
		&dto.CreateReservationRequest{Date: "not-a-date", Slot: model.SlotMorning}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-001",
		&dto.CreateReservationRequest{Date: "2026-03-02", Slot: "morning"}); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("小写时段期望 ErrInvalidSlot，实际: %v", err)
	}
}

// ── Cancel 测试 ──

func TestReservationService_Cancel_Success(t *testing.T) {
	svc, resRepo, _, clock := setupTestReservationService()

	seedReservation(resRepo, "res-001", "user-001", testDay, model.SlotMorning, model.StatusConfirmed)
	// 早场 08:00 开始，07:59:59 仍可取消
	clock.now = time.Date(2026, 3, 2, 7, 59, 59, 0, time.UTC)

	result, err := svc.Cancel(context.Background(), "res-001", "user-001")
	if err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}
	if result.Status != model.StatusCancelled {
		t.Errorf("期望Status=CANCELLED，实际=%s", result.Status)
	}
	if resRepo.reservations["res-001"].Status != model.StatusCancelled {
		t.Error("存储中的预订应为 CANCELLED")
	}
}

func TestReservationService_Cancel_TooLateAtSlotStart(t *testing.T) {
	svc, resRepo, _, clock := setupTestReservationService()

	seedReservation(resRepo, "res-001", "user-001", testDay, model.SlotMorning, model.StatusConfirmed)
	// 恰好 08:00:00：截止时刻本身已不可取消
	clock.now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	_, err := svc.Cancel(context.Background(), "res-001", "user-001")
	if !errors.Is(err, ErrCancelTooLate) {
		t.Errorf("时段开始时刻期望 ErrCancelTooLate，实际: %v", err)
	}
}

func TestReservationService_Cancel_TooLateAfterStart(t *testing.T) {
	svc, resRepo, _, clock := setupTestReservationService()

	seedReservation(resRepo, "res-001", "user-001", testDay, model.SlotAfternoon, model.StatusConfirmed)
	// 午场 13:00 开始，15:30 取消已迟
	clock.now = time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)

	_, err := svc.Cancel(context.Background(), "res-001", "user-001")
	if !errors.Is(err, ErrCancelTooLate) {
		t.Errorf("期望 ErrCancelTooLate，实际: %v", err)
	}
}

func TestReservationService_Cancel_NotOwner(t *testing.T) {
	svc, resRepo, _, _ := setupTestReservationService()

	seedReservation(resRepo, "res-001", "user-001", testDay, model.SlotMorning, model.StatusConfirmed)

	_, err := svc.Cancel(context.Background(), "res-001", "user-002")
	if !errors.Is(err, ErrNotReservationOwner) {
		t.Errorf("期望 ErrNotReservationOwner，实际: %v", err)
	}
	if resRepo.reservations["res-001"].Status != model.StatusConfirmed {
		t.Error("他人取消失败后预订应保持 CONFIRMED")
	}
}

func TestReservationService_Cancel_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestReservationService()

	_, err := svc.Cancel(context.Background(), "res-missing", "user-001")
	if !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("期望 ErrReservationNotFound，实际: %v", err)
	}
}

func TestReservationService_Cancel_AlreadyCancelled(t *testing.T) {
	svc, resRepo, _, clock := setupTestReservationService()

	seedReservation(resRepo, "res-001", "user-001", testDay, model.SlotMorning, model.StatusConfirmed)
	clock.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, err := svc.Cancel(context.Background(), "res-001", "user-001"); err != nil {
		t.Fatalf("首次 Cancel 应成功: %v", err)
	}

	// 已取消视同不存在
	_, err := svc.Cancel(context.Background(), "res-001", "user-001")
	if !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("重复取消期望 ErrReservationNotFound，实际: %v", err)
	}
}

// ── 查询测试 ──

func TestReservationService_ListMine_OnlyConfirmedSorted(t *testing.T) {
	svc, resRepo, _, _ := setupTestReservationService()

	later := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	seedReservation(resRepo, "res-b", "user-001", later, model.SlotMorning, model.StatusConfirmed)
	seedReservation(resRepo, "res-a", "user-001", testDay, model.SlotAfternoon, model.StatusConfirmed)
	seedReservation(resRepo, "res-c", "user-001", testDay, model.SlotMorning, model.StatusCancelled)
	seedReservation(resRepo, "res-d", "user-002", testDay, model.SlotMorning, model.StatusConfirmed)

	result, err := svc.ListMine(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望 2 条生效预订，实际=%d", len(result))
	}
	if result[0].Date != "2026-03-02" || result[1].Date != "2026-03-05" {
		t.Errorf("应按日期升序: %s, %s", result[0].Date, result[1].Date)
	}
}

func TestReservationService_ListAll_FilterByDateAndSlot(t *testing.T) {
	svc, resRepo, _, _ := setupTestReservationService()

	seedReservation(resRepo, "res-a", "user-001", testDay, model.SlotMorning, model.StatusConfirmed)
	seedReservation(resRepo, "res-b", "user-002", testDay, model.SlotAfternoon, model.StatusConfirmed)
	seedReservation(resRepo, "res-c", "user-003",
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), model.SlotMorning, model.StatusConfirmed)

	result, err := svc.ListAll(context.Background(), "2026-03-02", model.SlotMorning)
	if err != nil {
		t.Fatalf("ListAll 应成功: %v", err)
	}
	if len(result) != 1 || result[0].ID != "res-a" {
		t.Errorf("筛选结果不符: %+v", result)
	}

	all, err := svc.ListAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("无筛选 ListAll 应成功: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("期望 3 条，实际=%d", len(all))
	}
}
