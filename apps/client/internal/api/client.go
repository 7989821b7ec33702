package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"CampusClient/config"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// TokenProvider 提供当前登录令牌（由 session 注入）。
// 返回空串表示未登录，请求仍会发出并由后端以 401 拒绝。
type TokenProvider func() string

// Client 后端 REST 接口客户端。
// 设计要点：
// - token 以独立请求头传递（非 Bearer 方案，与后端约定一致）；
// - 熔断只统计传输层错误与 5xx，业务 4xx 不触发熔断；
// - 限流器在每次请求前等待，避免轮询与滑动操作打爆后端。
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	tokenFn TokenProvider
}

// NewClient 创建 REST 客户端实例。
func NewClient(cfg config.APIConfig, tokenFn TokenProvider) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "campus-api",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRate >= cfg.BreakerFailureRate
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		tokenFn: tokenFn,
	}
}

// errBody 后端错误响应体。code 缺失时按 HTTP 状态码兜底映射。
type errBody struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// mapStatus 将 HTTP 错误响应映射为业务错误。
func mapStatus(status int, raw []byte) *Error {
	var body errBody
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err == nil && body.Code != consts.CodeSuccess {
			return NewError(body.Code, status, body.Message)
		}
	}

	var code int32
	switch status {
	case http.StatusBadRequest:
		code = consts.CodeParamError
	case http.StatusUnauthorized:
		code = consts.CodeTokenExpired
	case http.StatusForbidden:
		// 权限不足不等于登录态失效，不得触发令牌清除
		code = consts.CodePermissionDeny
	case http.StatusNotFound:
		code = consts.CodeResourceNotFound
	case http.StatusConflict:
		code = consts.CodeRequestResolved
	default:
		code = consts.CodeInternalError
	}
	return NewError(code, status, body.Message)
}

// do 执行一次 REST 调用：限流 -> 熔断 -> 请求 -> 错误映射。
// out 为响应体反序列化目标（可为 nil）。
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.execute(ctx, method, path, nil, body, out)
}

// doWithQuery 带查询参数的 GET 请求。
func (c *Client) doWithQuery(ctx context.Context, path string, query map[string]string, out any) error {
	return c.execute(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) execute(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return NewError(consts.CodeNetworkError, 0, err.Error())
	}

	startTime := time.Now()
	var bizErr *Error

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req := c.http.R().SetContext(ctx)
		if token := c.tokenFn(); token != "" {
			req.SetHeader("token", token)
		}
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		if body != nil {
			req.SetBody(body)
		}
		if out != nil {
			req.SetResult(out)
		}

		resp, reqErr := req.Execute(method, path)
		if reqErr != nil {
			// 传输层错误，计入熔断统计
			return nil, NewError(consts.CodeNetworkError, 0, reqErr.Error())
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			// 5xx 计入熔断统计
			return nil, mapStatus(resp.StatusCode(), resp.Body())
		}
		if resp.IsError() {
			// 业务错误不触发熔断
			bizErr = mapStatus(resp.StatusCode(), resp.Body())
		}
		return nil, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			err = NewError(consts.CodeServiceUnavailable, 0, "circuit breaker is open")
		}
		metrics.APIRequests.WithLabelValues(path, "error").Inc()
		logger.Warn(ctx, "REST 调用失败",
			logger.String("method", method),
			logger.String("path", path),
			logger.ErrorField("error", err),
			logger.Duration("duration", time.Since(startTime)),
		)
		return err
	}
	if bizErr != nil {
		metrics.APIRequests.WithLabelValues(path, "biz_error").Inc()
		logger.Debug(ctx, "REST 调用返回业务错误",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("business_code", int(bizErr.Code)),
			logger.Duration("duration", time.Since(startTime)),
		)
		return bizErr
	}

	metrics.APIRequests.WithLabelValues(path, "ok").Inc()
	return nil
}

// ==================== 用户与资料 ====================

// ProfileResponse GET /profile 响应。
// 该接口同时承担登录态探活：401 表示令牌失效。
// 本人发布与被标记的回忆随资料一并下发，作为信息流的两个来源。
type ProfileResponse struct {
	User           *model.User     `json:"user"`
	Memories       []*model.Memory `json:"memories"`
	TaggedMemories []*model.Memory `json:"taggedMemories"`
}

// GetProfile 获取当前用户资料（兼登录态探活）。
func (c *Client) GetProfile(ctx context.Context) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchQuery 用户搜索过滤条件。
type SearchQuery struct {
	Query     string
	School    string
	Class     string
	Section   string
	Interests string
}

// SearchUsers 按关键字与校园属性搜索用户。
func (c *Client) SearchUsers(ctx context.Context, q SearchQuery) ([]*model.User, error) {
	var out struct {
		Users []*model.User `json:"users"`
	}
	if err := c.doWithQuery(ctx, "/searchUsers", map[string]string{
		"query":     q.Query,
		"school":    q.School,
		"class":     q.Class,
		"section":   q.Section,
		"interests": q.Interests,
	}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ==================== 好友与申请 ====================

// GetFriends 获取当前好友列表（含在线标记）。
func (c *Client) GetFriends(ctx context.Context) ([]*model.User, error) {
	var out struct {
		Friends []*model.User `json:"friends"`
	}
	if err := c.do(ctx, http.MethodGet, "/getFriends", nil, &out); err != nil {
		return nil, err
	}
	return out.Friends, nil
}

// GetFriendRequests 获取收到的好友申请列表。
func (c *Client) GetFriendRequests(ctx context.Context) ([]*model.FriendRequest, error) {
	var out struct {
		Requests []*model.FriendRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/getFriendRequests", nil, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

type friendBody struct {
	FriendID string `json:"friendId"`
}

// SendFriendRequest 向目标用户发送好友申请。
// 后端可能返回 AlreadyFriend / FriendRequestSent，调用方不得假定成功。
func (c *Client) SendFriendRequest(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodPost, "/sendFriendRequest", friendBody{FriendID: friendID}, nil)
}

// AcceptFriendRequest 接受好友申请。
func (c *Client) AcceptFriendRequest(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodPost, "/acceptFriendRequest", friendBody{FriendID: friendID}, nil)
}

// RejectFriendRequest 拒绝好友申请。
func (c *Client) RejectFriendRequest(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodPost, "/rejectFriendRequest", friendBody{FriendID: friendID}, nil)
}

// RecommendUsers 获取推荐用户列表（快配候选人来源）。
func (c *Client) RecommendUsers(ctx context.Context) ([]*model.User, error) {
	var out struct {
		Users []*model.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/recommendUsers", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ==================== 回忆 ====================

// memoryEnvelope 单对象响应体。
// 后端以 200 + 空体应答时对象为 nil，统一映射为 BodyError，调用方不做 nil 判断。
type memoryEnvelope struct {
	Memory *model.Memory `json:"memory"`
}

// FriendsMemories 获取好友发布的回忆（信息流第三来源）。
func (c *Client) FriendsMemories(ctx context.Context) ([]*model.Memory, error) {
	var out struct {
		Memories []*model.Memory `json:"memories"`
	}
	if err := c.do(ctx, http.MethodGet, "/friendsMemories", nil, &out); err != nil {
		return nil, err
	}
	return out.Memories, nil
}

// UploadMemoryRequest 发布回忆请求体。
type UploadMemoryRequest struct {
	Title          string                `json:"title"`
	TaggedFriends  []string              `json:"taggedFriends,omitempty"`
	Photos         []string              `json:"photos,omitempty"`
	TimelineEvents []model.TimelineEvent `json:"timelineEvents,omitempty"`
}

// UploadMemory 发布一条回忆，返回后端落库后的完整对象。
func (c *Client) UploadMemory(ctx context.Context, req *UploadMemoryRequest) (*model.Memory, error) {
	var out memoryEnvelope
	if err := c.do(ctx, http.MethodPost, "/uploadMemory", req, &out); err != nil {
		return nil, err
	}
	if out.Memory == nil {
		return nil, NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	return out.Memory, nil
}

// GetMemory 获取单条回忆详情。
func (c *Client) GetMemory(ctx context.Context, memoryID string) (*model.Memory, error) {
	var out memoryEnvelope
	if err := c.do(ctx, http.MethodGet, "/memory/"+memoryID, nil, &out); err != nil {
		return nil, err
	}
	if out.Memory == nil {
		return nil, NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	return out.Memory, nil
}

// LikeMemory 点赞回忆，返回权威的最新对象用于替换乐观状态。
func (c *Client) LikeMemory(ctx context.Context, memoryID string) (*model.Memory, error) {
	var out memoryEnvelope
	if err := c.do(ctx, http.MethodPost, "/memory/"+memoryID+"/like", nil, &out); err != nil {
		return nil, err
	}
	if out.Memory == nil {
		return nil, NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	return out.Memory, nil
}

// CommentMemory 评论回忆。
func (c *Client) CommentMemory(ctx context.Context, memoryID, text string) (*model.Memory, error) {
	var out memoryEnvelope
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/memory/"+memoryID+"/comment", body, &out); err != nil {
		return nil, err
	}
	if out.Memory == nil {
		return nil, NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	return out.Memory, nil
}

// AddTimelineEvent 为回忆追加时间线事件。
func (c *Client) AddTimelineEvent(ctx context.Context, memoryID string, ev model.TimelineEvent) (*model.Memory, error) {
	var out memoryEnvelope
	if err := c.do(ctx, http.MethodPost, "/memory/"+memoryID+"/addTimelineEvent", ev, &out); err != nil {
		return nil, err
	}
	if out.Memory == nil {
		return nil, NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	return out.Memory, nil
}

// AddPhoto 为回忆追加照片（URI 由外部媒体服务上传后得到）。
func (c *Client) AddPhoto(ctx context.Context, memoryID, photoURI string) (*model.Memory, error) {
	var out memoryEnvelope
	body := map[string]string{"photo": photoURI}
	if err := c.do(ctx, http.MethodPost, "/memory/"+memoryID+"/addPhoto", body, &out); err != nil {
		return nil, err
	}
	if out.Memory == nil {
		return nil, NewError(consts.CodeBodyError, 0, "memory response missing body")
	}
	return out.Memory, nil
}

// ==================== 会话与消息 ====================

// GetConversations 获取当前用户参与的会话列表。
func (c *Client) GetConversations(ctx context.Context) ([]*model.Conversation, error) {
	var out struct {
		Conversations []*model.Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// CreateConversation 按参与者对创建会话。
// 后端按参与者对查重，重复创建返回既有会话。
func (c *Client) CreateConversation(ctx context.Context, participantA, participantB string) (*model.Conversation, error) {
	var out struct {
		Conversation *model.Conversation `json:"conversation"`
	}
	body := map[string][]string{"participantIds": {participantA, participantB}}
	if err := c.do(ctx, http.MethodPost, "/conversations", body, &out); err != nil {
		return nil, err
	}
	if out.Conversation == nil {
		return nil, NewError(consts.CodeBodyError, 0, "conversation response missing body")
	}
	return out.Conversation, nil
}

// GetMessages 获取会话历史消息。
func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	var out struct {
		Messages []*model.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/messages/"+conversationID, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage 通过 REST 发送消息（非 socket 上行）。
// 成功返回落库后的消息；发送方不等待 socket 回显，回显到达时按 id 去重。
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*model.Message, error) {
	var out struct {
		Message *model.Message `json:"message"`
	}
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/messages/"+conversationID, body, &out); err != nil {
		return nil, err
	}
	if out.Message == nil {
		return nil, NewError(consts.CodeBodyError, 0, "message response missing body")
	}
	return out.Message, nil
}
