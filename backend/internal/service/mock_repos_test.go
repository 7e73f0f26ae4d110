package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/EHTK1/coworking-booking-app/backend/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%03d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// ── Mock ReservationRepository ──

type mockReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	nextID       int

	// createErr 非 nil 时下一次 Create 返回该错误（模拟唯一索引冲突等）
	createErr error
	// markErrIDs 中的预订 ID 调用 MarkReminderSent 时返回错误
	markErrIDs map[string]bool
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{
		reservations: make(map[string]*model.Reservation),
		markErrIDs:   make(map[string]bool),
	}
}

func sameDay(a, b time.Time) bool {
	return a.Equal(b)
}

func (m *mockReservationRepo) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}

	// 部分唯一索引 uniq_active_reservation 的内存等价物
	for _, r := range m.reservations {
		if r.UserID == res.UserID && sameDay(r.Date, res.Date) &&
			r.Slot == res.Slot && r.Status == model.StatusConfirmed {
			return gorm.ErrDuplicatedKey
		}
	}

	if res.ReservationID == "" {
		m.nextID++
		res.ReservationID = fmt.Sprintf("res-%03d", m.nextID)
	}
	res.CreatedAt = time.Now()
	m.reservations[res.ReservationID] = res
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) Update(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[res.ReservationID] = res
	return nil
}

func (m *mockReservationRepo) FindConfirmed(_ context.Context, userID string, date time.Time, slot string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.UserID == userID && sameDay(r.Date, date) &&
			r.Slot == slot && r.Status == model.StatusConfirmed {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) CountConfirmed(_ context.Context, date time.Time, slot string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.reservations {
		if sameDay(r.Date, date) && r.Slot == slot && r.Status == model.StatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (m *mockReservationRepo) ListByUser(_ context.Context, userID, status string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Slot < result[j].Slot
	})
	return result, nil
}

func (m *mockReservationRepo) ListConfirmed(_ context.Context, date *time.Time, slot string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.Status != model.StatusConfirmed {
			continue
		}
		if date != nil && !sameDay(r.Date, *date) {
			continue
		}
		if slot != "" && r.Slot != slot {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Slot < result[j].Slot
	})
	return result, nil
}

func (m *mockReservationRepo) ListPendingReminders(_ context.Context, date time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.Status == model.StatusConfirmed && sameDay(r.Date, date) && r.ReminderSentAt == nil {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ReservationID < result[j].ReservationID
	})
	return result, nil
}

func (m *mockReservationRepo) MarkReminderSent(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErrIDs[id] {
		return fmt.Errorf("mock: 写入提醒时间戳失败")
	}
	if r, ok := m.reservations[id]; ok {
		r.ReminderSentAt = &at
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.reservations)), nil
}

func (m *mockReservationRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.reservations {
		if r.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *mockReservationRepo) CountGroupedByUser(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]int64)
	for _, r := range m.reservations {
		result[r.UserID]++
	}
	return result, nil
}

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	settings *model.CoworkingSettings
	// createCalls 记录 Create 被调用的次数（懒初始化测试用）
	createCalls int
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{}
}

func (m *mockSettingsRepo) Get(_ context.Context) (*model.CoworkingSettings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) Create(_ context.Context, s *model.CoworkingSettings) error {
	m.createCalls++
	if m.settings != nil {
		return gorm.ErrDuplicatedKey
	}
	m.settings = s
	return nil
}

func (m *mockSettingsRepo) Update(_ context.Context, s *model.CoworkingSettings) error {
	m.settings = s
	return nil
}

// ── Mock Notifier ──

type notifyCall struct {
	userID string
	resID  string
	kind   NotificationKind
}

// mockNotifier 记录每次通知调用；failResIDs 中的预订触发发送失败
type mockNotifier struct {
	mu         sync.Mutex
	calls      []notifyCall
	failResIDs map[string]bool
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{failResIDs: make(map[string]bool)}
}

func (m *mockNotifier) Notify(_ context.Context, user *model.User, res *model.Reservation, _ *model.CoworkingSettings, kind NotificationKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResIDs[res.ReservationID] {
		return fmt.Errorf("mock: 邮件发送失败")
	}
	m.calls = append(m.calls, notifyCall{userID: user.UserID, resID: res.ReservationID, kind: kind})
	return nil
}

func (m *mockNotifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// ── 固定时钟 ──

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }
