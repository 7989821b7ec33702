package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 客户端引擎运行指标。
// 命名约定：campus_client_<子系统>_<指标>。

var (
	// APIRequests REST 请求计数，按接口路径与业务结果分类。
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_client_api_requests_total",
		Help: "REST 请求总数（按路径与结果分类）",
	}, []string{"path", "outcome"})

	// SocketConnects 长连接建立次数。
	SocketConnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_client_socket_connects_total",
		Help: "WebSocket 连接建立次数",
	})

	// SocketDisconnects 长连接断开次数（含主动断开与传输层丢失）。
	SocketDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_client_socket_disconnects_total",
		Help: "WebSocket 连接断开次数",
	})

	// MessagesDelivered 成功投递到已加入会话的消息数。
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_client_messages_delivered_total",
		Help: "投递到已加入会话的下行消息数",
	})

	// MessagesDropped 因会话未加入而被丢弃的消息数。
	MessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_client_messages_dropped_total",
		Help: "因会话未加入而丢弃的下行消息数",
	})

	// MessagesDeduped 按消息 id 去重掉的回显/重复消息数。
	MessagesDeduped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_client_messages_deduped_total",
		Help: "按消息 id 去重掉的重复消息数",
	})

	// OnlineFriends 最近一次在线状态快照中的在线好友数。
	OnlineFriends = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campus_client_online_friends",
		Help: "最近一次快照中的在线好友数（尽力而为）",
	})
)

// Handler 返回 prometheus 指标暴露接口。
// Prometheus 会定时访问这个接口来拉取监控数据。
func Handler() http.Handler {
	return promhttp.Handler()
}
