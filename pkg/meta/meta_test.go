package meta_test

import (
	"context"
	"testing"

	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/stretchr/testify/assert"
)

func TestInjectExtractRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{
		meta.TraceID:       "trace-123",
		meta.RequestUserID: "42",
		meta.IPAddress:     "",
	})

	got := meta.ExtractMetaFromContext(ctx)

	assert.Equal(t, "trace-123", got[meta.TraceID])
	assert.Equal(t, "42", got[meta.RequestUserID])
	assert.NotContains(t, got, meta.IPAddress)
}

func TestFind(t *testing.T) {
	t.Parallel()

	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{
		meta.RequestUserID: "7",
	})

	assert.Equal(t, "7", meta.Find(ctx, meta.RequestUserID))
	assert.Empty(t, meta.Find(ctx, meta.UserAgent))
	assert.Empty(t, meta.Find(context.Background(), meta.TraceID))
}
