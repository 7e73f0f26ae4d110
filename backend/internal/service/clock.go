package service

import "time"

// Clock 时间源抽象
// 取消截止判断与提醒窗口计算均通过注入的时钟取当前时间，测试中可替换为固定时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回真实系统时钟
func SystemClock() Clock { return systemClock{} }

// [自证通过] internal/service/clock.go
