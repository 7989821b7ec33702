package main

import (
	"context"

	"CampusClient/apps/client/internal/channel"
	"CampusClient/apps/client/internal/service"
	"CampusClient/apps/client/internal/session"
	"CampusClient/pkg/logger"
)

// app 聚合引擎对外暴露的全部能力。
// 屏幕层（不在本仓库范围内）通过该对象访问各服务；
// 底层 socket 连接只归 channel 所有，任何消费方不得自行建连。
type app struct {
	session  *session.Session
	channel  *channel.Channel
	social   service.SocialService
	feed     service.FeedService
	presence service.PresenceService
	match    service.MatchService
	memory   service.MemoryService
	chat     service.ChatService
}

// warmUp 登录态有效时预热各快照。
// 任何一步失败都不阻塞启动：快照留空，下次刷新追上。
func (a *app) warmUp(ctx context.Context) {
	if _, err := a.social.ListFriends(ctx); err != nil {
		logger.Warn(ctx, "好友列表预热失败", logger.ErrorField("error", err))
	}
	if _, err := a.social.ListIncomingRequests(ctx); err != nil {
		logger.Warn(ctx, "申请列表预热失败", logger.ErrorField("error", err))
	}
	if _, err := a.feed.Refresh(ctx); err != nil {
		logger.Warn(ctx, "信息流预热失败", logger.ErrorField("error", err))
	}
	if err := a.match.Reload(ctx); err != nil {
		logger.Warn(ctx, "快配候选人预热失败", logger.ErrorField("error", err))
	}
	if _, err := a.presence.RefreshPresence(ctx, nil); err != nil {
		logger.Warn(ctx, "在线状态预热失败", logger.ErrorField("error", err))
	}
}

// shutdown 优雅收尾：停轮询、断长连接。
func (a *app) shutdown() {
	a.presence.Stop()
	a.channel.Disconnect()
}
