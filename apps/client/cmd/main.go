package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"CampusClient/apps/client/internal/api"
	"CampusClient/apps/client/internal/channel"
	"CampusClient/apps/client/internal/service"
	"CampusClient/apps/client/internal/session"
	"CampusClient/config"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/async"
	"CampusClient/pkg/ctxmeta"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/metrics"
	"CampusClient/pkg/storage"

	"github.com/google/uuid"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 加载配置（.env + 环境变量覆盖）
	cfg := config.LoadEnv()

	// 2. 初始化日志
	zl, err := logger.Build(cfg.Logger)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	logger.ReplaceGlobal(zl)
	defer zl.Sync()

	// 进程级 trace_id，便于把一次启动的日志串起来
	ctx = ctxmeta.WithTraceID(ctx, uuid.New().String())

	// 3. 初始化协程池
	if err := async.Init(cfg.Async); err != nil {
		logger.Fatal(ctx, "初始化协程池失败", logger.ErrorField("error", err))
	}
	defer func() {
		if err := async.Release(); err != nil {
			logger.Warn(ctx, "协程池释放超时", logger.ErrorField("error", err))
		}
	}()

	// 4. 初始化本地存储
	store, err := storage.New(cfg.Storage.Dir)
	if err != nil {
		logger.Fatal(ctx, "初始化本地存储失败", logger.ErrorField("error", err))
	}

	// 5. 创建 REST 客户端与会话
	// 令牌回调晚绑定：client 先于 session 创建
	var sess *session.Session
	apiClient := api.NewClient(cfg.API, func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	})
	sess = session.NewSession(store, apiClient)

	// 6. 恢复登录态并探活
	loggedIn := false
	if ok, restoreErr := sess.Restore(); restoreErr != nil {
		logger.Warn(ctx, "读取本地令牌失败", logger.ErrorField("error", restoreErr))
	} else if !ok {
		logger.Info(ctx, "未找到本地令牌，等待外部登录流程注入")
	} else if sess.Expired() {
		logger.Warn(ctx, "本地令牌已过期，等待重新登录")
		_ = sess.Logout(ctx)
	} else if _, probeErr := sess.Probe(ctx); probeErr != nil {
		switch {
		case api.IsAuthExpired(probeErr):
			logger.Warn(ctx, "登录态探活失败，已回到未登录态")
		case api.CodeOf(probeErr) == consts.CodeProfileIncomplete:
			logger.Info(ctx, "个人资料不完整，需引导到资料设置")
			loggedIn = true
		default:
			logger.Warn(ctx, "登录态探活失败", logger.ErrorField("error", probeErr))
		}
	} else {
		loggedIn = true
	}
	if loggedIn {
		ctx = ctxmeta.WithUserID(ctx, sess.UserID())
		logger.Info(ctx, "登录态有效", logger.String("user_id", sess.UserID()))
	}

	// 7. 构建通道与各业务服务
	ch := channel.NewChannel(cfg.Socket, nil, sess.UserID)
	socialSvc := service.NewSocialService(apiClient)
	engine := &app{
		session:  sess,
		channel:  ch,
		social:   socialSvc,
		feed:     service.NewFeedService(apiClient),
		presence: service.NewPresenceService(apiClient, cfg.Presence),
		match:    service.NewMatchService(apiClient, socialSvc, store),
		memory:   service.NewMemoryService(apiClient),
		chat:     service.NewChatService(apiClient, ch, sess.UserID),
	}

	ch.SetMessageHandler(func(msg *model.Message) {
		logger.Debug(ctx, "收到实时消息",
			logger.String("conversation_id", msg.ConversationID),
			logger.String("message_id", msg.ID),
		)
	})

	// 8. 建立长连接并预热快照（失败不退出：保持断开态，由界面择机重连）
	if loggedIn {
		if err := ch.Connect(ctx); err != nil {
			logger.Warn(ctx, "长连接建立失败，稍后可重试", logger.ErrorField("error", err))
		}
		engine.warmUp(ctx)
	}

	// 9. 启动在线状态轮询
	engine.presence.Start(ctx)

	// 10. 暴露 prometheus 指标
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if serveErr := http.ListenAndServe(cfg.MetricsAddr, mux); serveErr != nil {
				logger.Warn(ctx, "指标服务退出", logger.ErrorField("error", serveErr))
			}
		}()
	}

	logger.Info(ctx, "客户端引擎已启动",
		logger.String("api_base_url", cfg.API.BaseURL),
		logger.String("socket_url", cfg.Socket.URL),
		logger.String("socket_state", ch.State().String()),
	)

	// 11. 等待退出信号并优雅收尾
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "开始优雅退出")
	engine.shutdown()
	cancel()
	logger.Info(ctx, "客户端引擎已退出")
}
