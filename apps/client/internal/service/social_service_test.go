package service

import (
	"context"
	"errors"
	"testing"

	"CampusClient/apps/client/internal/api"
	"CampusClient/consts"
	"CampusClient/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocialAPI struct {
	getFriendsFn          func(context.Context) ([]*model.User, error)
	getFriendRequestsFn   func(context.Context) ([]*model.FriendRequest, error)
	sendFriendRequestFn   func(context.Context, string) error
	acceptFriendRequestFn func(context.Context, string) error
	rejectFriendRequestFn func(context.Context, string) error
	searchUsersFn         func(context.Context, api.SearchQuery) ([]*model.User, error)

	getFriendsCalls  int
	getRequestsCalls int
	acceptCalls      int
}

var _ SocialAPI = (*fakeSocialAPI)(nil)

func (f *fakeSocialAPI) GetFriends(ctx context.Context) ([]*model.User, error) {
	f.getFriendsCalls++
	if f.getFriendsFn == nil {
		return nil, nil
	}
	return f.getFriendsFn(ctx)
}

func (f *fakeSocialAPI) GetFriendRequests(ctx context.Context) ([]*model.FriendRequest, error) {
	f.getRequestsCalls++
	if f.getFriendRequestsFn == nil {
		return nil, nil
	}
	return f.getFriendRequestsFn(ctx)
}

func (f *fakeSocialAPI) SendFriendRequest(ctx context.Context, friendID string) error {
	if f.sendFriendRequestFn == nil {
		return nil
	}
	return f.sendFriendRequestFn(ctx, friendID)
}

func (f *fakeSocialAPI) AcceptFriendRequest(ctx context.Context, friendID string) error {
	f.acceptCalls++
	if f.acceptFriendRequestFn == nil {
		return nil
	}
	return f.acceptFriendRequestFn(ctx, friendID)
}

func (f *fakeSocialAPI) RejectFriendRequest(ctx context.Context, friendID string) error {
	if f.rejectFriendRequestFn == nil {
		return nil
	}
	return f.rejectFriendRequestFn(ctx, friendID)
}

func (f *fakeSocialAPI) SearchUsers(ctx context.Context, q api.SearchQuery) ([]*model.User, error) {
	if f.searchUsersFn == nil {
		return nil, nil
	}
	return f.searchUsersFn(ctx, q)
}

func TestSocialListFriendsReplacesSnapshot(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{
		getFriendsFn: func(context.Context) ([]*model.User, error) {
			return []*model.User{user("a"), user("b")}, nil
		},
	}
	svc := NewSocialService(fake)

	friends, err := svc.ListFriends(context.Background())
	require.NoError(t, err)
	require.Len(t, friends, 2)

	// 第二次拉取整体替换，而不是追加
	fake.getFriendsFn = func(context.Context) ([]*model.User, error) {
		return []*model.User{user("c")}, nil
	}
	_, err = svc.ListFriends(context.Background())
	require.NoError(t, err)

	snapshot := svc.Friends()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "c", snapshot[0].ID)
}

func TestSocialListFriendsFailureKeepsSnapshot(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{
		getFriendsFn: func(context.Context) ([]*model.User, error) {
			return []*model.User{user("a")}, nil
		},
	}
	svc := NewSocialService(fake)
	_, err := svc.ListFriends(context.Background())
	require.NoError(t, err)

	fake.getFriendsFn = func(context.Context) ([]*model.User, error) {
		return nil, errors.New("network down")
	}
	_, err = svc.ListFriends(context.Background())
	require.Error(t, err)

	// 失败不清空上一次的快照
	assert.Len(t, svc.Friends(), 1)
}

func TestSocialAcceptResyncsBothLists(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{}
	svc := NewSocialService(fake)

	require.NoError(t, svc.AcceptRequest(context.Background(), "u1"))

	assert.Equal(t, 1, fake.acceptCalls)
	assert.Equal(t, 1, fake.getFriendsCalls)
	assert.Equal(t, 1, fake.getRequestsCalls)
}

func TestSocialAcceptTreatsResolvedRequestAsSuccess(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{
		acceptFriendRequestFn: func(context.Context, string) error {
			return api.NewError(consts.CodeRequestResolved, 409, "")
		},
	}
	svc := NewSocialService(fake)

	// 申请已被其他设备处理：按成功对待并重拉两张列表
	require.NoError(t, svc.AcceptRequest(context.Background(), "u1"))
	assert.Equal(t, 1, fake.getFriendsCalls)
	assert.Equal(t, 1, fake.getRequestsCalls)

	// 二次接受同样幂等
	require.NoError(t, svc.AcceptRequest(context.Background(), "u1"))
	assert.Equal(t, 2, fake.acceptCalls)
}

func TestSocialAcceptPropagatesServerError(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{
		acceptFriendRequestFn: func(context.Context, string) error {
			return api.NewError(consts.CodeInternalError, 500, "")
		},
	}
	svc := NewSocialService(fake)

	err := svc.AcceptRequest(context.Background(), "u1")
	assert.Equal(t, consts.CodeInternalError, api.CodeOf(err))
	// 失败不触发重拉
	assert.Equal(t, 0, fake.getFriendsCalls)
}

func TestSocialRejectResyncsRequestsOnly(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{}
	svc := NewSocialService(fake)

	require.NoError(t, svc.RejectRequest(context.Background(), "u1"))

	// 拒绝不影响好友列表，只重拉申请列表
	assert.Equal(t, 0, fake.getFriendsCalls)
	assert.Equal(t, 1, fake.getRequestsCalls)
}

func TestSocialAcceptSucceedsWhenResyncFails(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{
		getFriendsFn: func(context.Context) ([]*model.User, error) {
			return nil, errors.New("temporarily down")
		},
		getFriendRequestsFn: func(context.Context) ([]*model.FriendRequest, error) {
			return nil, errors.New("temporarily down")
		},
	}
	svc := NewSocialService(fake)

	// 重拉失败不影响变更结果
	assert.NoError(t, svc.AcceptRequest(context.Background(), "u1"))
}

func TestSocialUserCacheFilledFromLists(t *testing.T) {
	initServiceTestLogger()

	fake := &fakeSocialAPI{
		getFriendsFn: func(context.Context) ([]*model.User, error) {
			return []*model.User{user("f1")}, nil
		},
		getFriendRequestsFn: func(context.Context) ([]*model.FriendRequest, error) {
			return []*model.FriendRequest{
				{RequesterID: "r1", Status: model.RequestStatusPending, Requester: user("r1")},
			}, nil
		},
		searchUsersFn: func(context.Context, api.SearchQuery) ([]*model.User, error) {
			return []*model.User{user("s1")}, nil
		},
	}
	svc := NewSocialService(fake)

	_, err := svc.ListFriends(context.Background())
	require.NoError(t, err)
	_, err = svc.ListIncomingRequests(context.Background())
	require.NoError(t, err)
	_, err = svc.SearchUsers(context.Background(), api.SearchQuery{Query: "s"})
	require.NoError(t, err)

	for _, id := range []string{"f1", "r1", "s1"} {
		got, ok := svc.GetUser(id)
		require.True(t, ok, "user %s should be cached", id)
		assert.Equal(t, id, got.ID)
	}

	_, ok := svc.GetUser("unknown")
	assert.False(t, ok)
}
