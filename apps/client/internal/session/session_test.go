package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"CampusClient/apps/client/internal/api"
	"CampusClient/consts"
	"CampusClient/model"
	"CampusClient/pkg/logger"
	"CampusClient/pkg/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var sessionLoggerOnce sync.Once

func initSessionTestLogger() {
	sessionLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeProfileAPI struct {
	getProfileFn func(context.Context) (*api.ProfileResponse, error)
}

var _ ProfileAPI = (*fakeProfileAPI)(nil)

func (f *fakeProfileAPI) GetProfile(ctx context.Context) (*api.ProfileResponse, error) {
	if f.getProfileFn == nil {
		return &api.ProfileResponse{
			User: &model.User{ID: "u1", Name: "张三", Class: "3", Section: "A"},
		}, nil
	}
	return f.getProfileFn(ctx)
}

func newTestSession(t *testing.T, profileAPI ProfileAPI) (*Session, *storage.Store) {
	t.Helper()
	initSessionTestLogger()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	return NewSession(store, profileAPI), store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestRestoreWithoutSavedToken(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{})

	ok, err := sess.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, sess.Token())
}

func TestSetTokenPersistsAcrossInstances(t *testing.T) {
	sess, store := newTestSession(t, &fakeProfileAPI{})
	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, sess.SetToken(token))

	// 新实例从同一存储恢复
	sess2 := NewSession(store, &fakeProfileAPI{})
	ok, err := sess2.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, token, sess2.Token())
}

func TestExpired(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{})

	// 无令牌视为已过期
	assert.True(t, sess.Expired())

	require.NoError(t, sess.SetToken("not-a-jwt"))
	assert.True(t, sess.Expired())

	require.NoError(t, sess.SetToken(signedToken(t, time.Now().Add(-time.Hour))))
	assert.True(t, sess.Expired())

	require.NoError(t, sess.SetToken(signedToken(t, time.Now().Add(time.Hour))))
	assert.False(t, sess.Expired())

	// exp 缺失交由后端裁决，本地不判过期
	require.NoError(t, sess.SetToken(signedToken(t, time.Time{})))
	assert.False(t, sess.Expired())
}

func TestProbeRefreshesUserProjection(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{})

	user, err := sess.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "u1", sess.UserID())
	assert.Equal(t, user, sess.User())
}

func TestProbePurgesTokenOnAuthFailure(t *testing.T) {
	sess, store := newTestSession(t, &fakeProfileAPI{
		getProfileFn: func(context.Context) (*api.ProfileResponse, error) {
			return nil, api.NewError(consts.CodeTokenExpired, 401, "")
		},
	})
	require.NoError(t, sess.SetToken(signedToken(t, time.Now().Add(time.Hour))))

	_, err := sess.Probe(context.Background())
	assert.True(t, api.IsAuthExpired(err))
	assert.Empty(t, sess.Token())

	// 本地存储里的令牌同样被清除
	var saved string
	ok, err := store.Get(storage.KeyAuthToken, &saved)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProbeKeepsTokenOnNetworkFailure(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{
		getProfileFn: func(context.Context) (*api.ProfileResponse, error) {
			return nil, api.NewError(consts.CodeNetworkError, 0, "")
		},
	})
	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, sess.SetToken(token))

	_, err := sess.Probe(context.Background())
	require.Error(t, err)
	// 网络错误不清令牌，下次启动再试
	assert.Equal(t, token, sess.Token())
}

func TestProbeReportsIncompleteProfile(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{
		getProfileFn: func(context.Context) (*api.ProfileResponse, error) {
			return &api.ProfileResponse{User: &model.User{ID: "u1", Name: "张三"}}, nil
		},
	})

	user, err := sess.Probe(context.Background())
	assert.Equal(t, consts.CodeProfileIncomplete, api.CodeOf(err))
	// 资料不完整仍返回用户并保留投影（上层引导补全）
	require.NotNil(t, user)
	assert.Equal(t, "u1", sess.UserID())
}

func TestProbeRejectsEmptyBody(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{
		getProfileFn: func(context.Context) (*api.ProfileResponse, error) {
			return &api.ProfileResponse{}, nil
		},
	})

	_, err := sess.Probe(context.Background())
	assert.Equal(t, consts.CodeBodyError, api.CodeOf(err))
}

func TestLogoutClearsState(t *testing.T) {
	sess, _ := newTestSession(t, &fakeProfileAPI{})
	require.NoError(t, sess.SetToken(signedToken(t, time.Now().Add(time.Hour))))
	_, err := sess.Probe(context.Background())
	require.NoError(t, err)

	require.NoError(t, sess.Logout(context.Background()))
	assert.Empty(t, sess.Token())
	assert.Empty(t, sess.UserID())
	assert.Nil(t, sess.User())
}
