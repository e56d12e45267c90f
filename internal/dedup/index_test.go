package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type listerFunc func(ctx context.Context) ([]string, error)

func (f listerFunc) ListURLs(ctx context.Context) ([]string, error) { return f(ctx) }

func TestIndexLoadContainsRecord(t *testing.T) {
	idx := New()
	idx.Load(context.Background(), listerFunc(func(context.Context) ([]string, error) {
		return []string{"https://a.example.com", " https://b.example.com ", ""}, nil
	}))

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("https://a.example.com"))
	assert.True(t, idx.Contains("https://b.example.com"))
	assert.False(t, idx.Contains("https://c.example.com"))

	idx.Record("https://c.example.com ")
	assert.True(t, idx.Contains("https://c.example.com"))
	idx.Record("")
	assert.Equal(t, 3, idx.Len())
}

func TestIndexLoadFailsOpen(t *testing.T) {
	idx := New()
	idx.Record("https://stale.example.com")

	idx.Load(context.Background(), listerFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	}))

	assert.Equal(t, 0, idx.Len())
	assert.False(t, idx.Contains("https://stale.example.com"))
}
