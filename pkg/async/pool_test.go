package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"CampusClient/config"
	"CampusClient/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var asyncLoggerOnce sync.Once

func initAsyncTestLogger() {
	asyncLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

func TestSubmitBeforeInit(t *testing.T) {
	initAsyncTestLogger()
	assert.ErrorIs(t, Submit(func() {}), ErrNotInitialized)
}

func TestInitSubmitRelease(t *testing.T) {
	initAsyncTestLogger()
	require.NoError(t, Init(config.DefaultAsyncConfig()))
	defer func() { _ = Release() }()

	done := make(chan struct{})
	require.NoError(t, Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestRunSafeRecoversPanic(t *testing.T) {
	initAsyncTestLogger()
	require.NoError(t, Init(config.DefaultAsyncConfig()))
	defer func() { _ = Release() }()

	done := make(chan struct{})
	RunSafe(context.Background(), func(context.Context) {
		defer close(done)
		panic("boom")
	}, time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	initAsyncTestLogger()
	require.NoError(t, Init(config.DefaultAsyncConfig()))
	require.NoError(t, Release())
	require.NoError(t, Release())
}
