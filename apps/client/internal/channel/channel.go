package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"sync"
	"time"

	"CampusClient/config"
	"CampusClient/model"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/metrics"

	"github.com/gorilla/websocket"
)

// State 连接状态机状态。
type State int32

const (
	StateDisconnected State = iota // 初始/断开
	StateConnecting                // 握手中
	StateConnected                 // 已连接
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

var (
	// ErrConnectFailed 表示握手失败，可由上层择机重试（不做自动无限重连）。
	ErrConnectFailed = errors.New("socket connect failed")
	// ErrNotConnected 表示操作要求连接已建立。
	ErrNotConnected = errors.New("socket not connected")
	// ErrUserIDRequired 表示连接参数缺少 userId。
	ErrUserIDRequired = errors.New("userId is required")
)

// Conn 抽象底层 WebSocket 连接，*websocket.Conn 天然满足。
// 抽出接口是为了在测试中用脚本化假连接替代真实网络。
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer 可注入的拨号器。
type Dialer interface {
	Dial(ctx context.Context, rawURL string) (Conn, error)
}

// wsDialer 默认 gorilla 实现。
type wsDialer struct {
	handshakeTimeout time.Duration
}

func (d *wsDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// MessageHandler 下行消息回调（已通过房间过滤与去重后触发）。
type MessageHandler func(msg *model.Message)

// Channel 进程内唯一的实时消息通道。
// 设计要点：
// - 整个会话期间只允许本对象打开/关闭底层连接，消费方只借用房间成员身份；
// - send 队列削峰，写循环统一设置写超时；
// - 未加入房间的下行消息直接丢弃（不缓冲）；
// - 每个会话内按消息 id 去重，REST 发送与 socket 回显不会产生重复；
// - 传输层丢失后房间成员身份全部失效，重连后需重新 join。
type Channel struct {
	cfg       config.SocketConfig
	dialer    Dialer
	userIDFn  func() string
	onMessage MessageHandler

	mu       sync.Mutex
	state    State
	conn     Conn
	send     chan []byte
	done     chan struct{}
	rooms    map[string]struct{}
	messages map[string][]*model.Message
	seen     map[string]map[string]struct{}
}

// NewChannel 创建通道实例。dialer 传 nil 时使用 gorilla 默认实现。
func NewChannel(cfg config.SocketConfig, dialer Dialer, userIDFn func() string) *Channel {
	if dialer == nil {
		dialer = &wsDialer{handshakeTimeout: cfg.HandshakeTimeout}
	}
	return &Channel{
		cfg:      cfg,
		dialer:   dialer,
		userIDFn: userIDFn,
		state:    StateDisconnected,
		rooms:    make(map[string]struct{}),
		messages: make(map[string][]*model.Message),
		seen:     make(map[string]map[string]struct{}),
	}
}

// SetMessageHandler 设置下行消息回调（需在 Connect 前设置）。
func (c *Channel) SetMessageHandler(h MessageHandler) {
	c.onMessage = h
}

// State 返回当前连接状态。
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect 建立长连接：Disconnected -> Connecting -> Connected。
// 失败时回到 Disconnected 并返回可重试错误；已连接/握手中时为幂等空操作。
func (c *Channel) Connect(ctx context.Context) error {
	userID := c.userIDFn()
	if userID == "" {
		return ErrUserIDRequired
	}

	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	connectURL, err := buildConnectURL(c.cfg.URL, userID)
	if err == nil {
		var conn Conn
		conn, err = c.dialer.Dial(ctx, connectURL)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.state = StateConnected
			c.send = make(chan []byte, c.cfg.SendQueueSize)
			c.done = make(chan struct{})
			send, done := c.send, c.done
			c.mu.Unlock()

			metrics.SocketConnects.Inc()
			logger.Info(ctx, "长连接已建立", logger.String("user_id", userID))

			go c.writeLoop(conn, send, done)
			go c.readLoop(ctx, conn)
			return nil
		}
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
	logger.Warn(ctx, "长连接握手失败",
		logger.String("user_id", userID),
		logger.ErrorField("error", err),
	)
	return errors.Join(ErrConnectFailed, err)
}

// buildConnectURL 以 query 携带 userId 组装连接地址。
func buildConnectURL(rawURL, userID string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Disconnect 主动断开连接（幂等）。
// 房间的 leave 意图只是尽力而为，服务端清理不依赖有序离开。
func (c *Channel) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.Close()
	c.teardown(conn)
}

// teardown 统一的断开清理：只有当前连接才可触发，重复调用为空操作。
// 传输层丢失后房间成员身份全部清空，重连后由消费方重新 join。
func (c *Channel) teardown(conn Conn) {
	c.mu.Lock()
	if c.conn != conn || conn == nil {
		c.mu.Unlock()
		return
	}
	close(c.done)
	c.conn = nil
	c.send = nil
	c.done = nil
	c.state = StateDisconnected
	c.rooms = make(map[string]struct{})
	c.mu.Unlock()

	metrics.SocketDisconnects.Inc()
	logger.Info(context.Background(), "长连接已断开")
}

// readLoop 持续读取下行帧，网络错误即触发清理退出。
func (c *Channel) readLoop(ctx context.Context, conn Conn) {
	defer c.teardown(conn)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleInbound(ctx, raw)
	}
}

// writeLoop 持续从 send 队列取帧写入连接，每次写操作设置超时。
func (c *Channel) writeLoop(conn Conn, send <-chan []byte, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case frame := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// enqueue 将帧投递到写队列。
// 返回 false 表示未连接或队列已满（join/leave 帧本就是尽力而为）。
func (c *Channel) enqueue(frame []byte) bool {
	c.mu.Lock()
	send, done := c.send, c.done
	c.mu.Unlock()
	if send == nil {
		return false
	}
	select {
	case <-done:
		return false
	case send <- frame:
		return true
	default:
		return false
	}
}

// JoinConversation 加入会话房间（幂等：重复加入为空操作）。
// 要求连接已建立；加入后该会话的下行消息才会被接收。
func (c *Channel) JoinConversation(conversationID string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	if _, ok := c.rooms[conversationID]; ok {
		c.mu.Unlock()
		return nil
	}
	c.rooms[conversationID] = struct{}{}
	c.mu.Unlock()

	frame, err := marshalEnvelope(EventJoinConversation, roomData{ConversationID: conversationID})
	if err != nil {
		return err
	}
	if !c.enqueue(frame) {
		logger.Warn(context.Background(), "join 帧投递失败",
			logger.String("conversation_id", conversationID),
		)
	}
	return nil
}

// LeaveConversation 离开会话房间（幂等：未加入时为空操作）。
// leave 帧尽力而为；本地成员身份立即失效，晚到的消息会被丢弃。
func (c *Channel) LeaveConversation(conversationID string) {
	c.mu.Lock()
	if _, ok := c.rooms[conversationID]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.rooms, conversationID)
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return
	}
	frame, err := marshalEnvelope(EventLeaveConversation, roomData{ConversationID: conversationID})
	if err != nil {
		return
	}
	_ = c.enqueue(frame)
}

// Joined 判断是否已加入指定会话房间。
func (c *Channel) Joined(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[conversationID]
	return ok
}

// handleInbound 处理一帧下行数据。
// 未知帧类型只记日志；new_message 按房间过滤 + 按消息 id 去重。
func (c *Channel) handleInbound(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Warn(ctx, "下行帧格式错误", logger.ErrorField("error", err))
		return
	}

	switch env.Type {
	case EventNewMessage:
		var msg model.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil || msg.ID == "" || msg.ConversationID == "" {
			logger.Warn(ctx, "new_message 消息体解析失败", logger.ErrorField("error", err))
			return
		}
		c.deliver(ctx, &msg)
	default:
		logger.Debug(ctx, "忽略未知帧类型", logger.String("type", env.Type))
	}
}

// deliver 将下行消息投递到已加入的会话。
// 未加入的会话直接丢弃（不缓冲）；重复 id 去重。
func (c *Channel) deliver(ctx context.Context, msg *model.Message) {
	c.mu.Lock()
	if _, joined := c.rooms[msg.ConversationID]; !joined {
		c.mu.Unlock()
		metrics.MessagesDropped.Inc()
		logger.Debug(ctx, "丢弃未加入会话的消息",
			logger.String("conversation_id", msg.ConversationID),
			logger.String("message_id", msg.ID),
		)
		return
	}
	inserted := c.insertLocked(msg)
	c.mu.Unlock()

	if !inserted {
		metrics.MessagesDeduped.Inc()
		return
	}
	metrics.MessagesDelivered.Inc()
	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

// insertLocked 按消息 id 去重后以接收顺序追加，需持有 c.mu。
func (c *Channel) insertLocked(msg *model.Message) bool {
	convSeen, ok := c.seen[msg.ConversationID]
	if !ok {
		convSeen = make(map[string]struct{})
		c.seen[msg.ConversationID] = convSeen
	}
	if _, dup := convSeen[msg.ID]; dup {
		return false
	}
	convSeen[msg.ID] = struct{}{}
	c.messages[msg.ConversationID] = append(c.messages[msg.ConversationID], msg)
	return true
}

// AppendLocal 记录 REST 发送成功的消息。
// 不要求已加入房间；后续 socket 回显同一 id 时会被去重。
func (c *Channel) AppendLocal(msg *model.Message) {
	if msg == nil || msg.ID == "" {
		return
	}
	c.mu.Lock()
	c.insertLocked(msg)
	c.mu.Unlock()
}

// SeedHistory 灌入会话历史消息（与实时消息共用去重集合）。
func (c *Channel) SeedHistory(conversationID string, msgs []*model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range msgs {
		if msg == nil || msg.ID == "" {
			continue
		}
		if msg.ConversationID == "" {
			msg.ConversationID = conversationID
		}
		c.insertLocked(msg)
	}
}

// Messages 返回会话消息快照。
// 渲染顺序按 CreatedAt 稳定排序（id 打破平局），
// 以此掩盖 REST 发送与 socket 接收之间的到达顺序竞争。
func (c *Channel) Messages(conversationID string) []*model.Message {
	c.mu.Lock()
	list := c.messages[conversationID]
	out := make([]*model.Message, len(list))
	copy(out, list)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
