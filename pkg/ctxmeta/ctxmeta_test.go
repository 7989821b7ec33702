package ctxmeta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-1")
	assert.Equal(t, "trace-1", TraceID(ctx))
}

func TestUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "u1")
	assert.Equal(t, "u1", UserID(ctx))
}

func TestMissingValuesReturnEmpty(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, UserID(context.Background()))
	assert.Empty(t, TraceID(nil))
	assert.Empty(t, UserID(nil))
}
