package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	embedCalls int
	batchSizes []int
	err        error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.embedCalls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.batchSizes = append(c.batchSizes, len(texts))
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int             { return 1 }
func (c *countingEmbedder) ModelName() string           { return "counting" }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error                { return nil }

func TestWrap_Disabled(t *testing.T) {
	next := &countingEmbedder{}
	assert.Same(t, next, Wrap(next, 0, time.Minute))
	assert.Same(t, next, Wrap(next, 10, 0))
	assert.Nil(t, Wrap(nil, 10, time.Minute))
}

func TestEmbed_CachesRepeatedText(t *testing.T) {
	next := &countingEmbedder{}
	svc := Wrap(next, 10, time.Minute)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 1, next.embedCalls)
}

func TestEmbed_ReturnsCopies(t *testing.T) {
	svc := Wrap(&countingEmbedder{}, 10, time.Minute)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	a[0] = 99

	b, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, float32(5), b[0])
}

func TestEmbed_ErrorsAreNotCached(t *testing.T) {
	next := &countingEmbedder{err: errors.New("down")}
	svc := Wrap(next, 10, time.Minute)

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Zero(t, svc.(*EmbeddingService).Len())
}

func TestEmbedBatch_OnlyEmbedsMisses(t *testing.T) {
	next := &countingEmbedder{}
	svc := Wrap(next, 10, time.Minute)
	ctx := context.Background()

	_, err := svc.Embed(ctx, "cached")
	require.NoError(t, err)

	out, err := svc.EmbedBatch(ctx, []string{"a", "cached", "bbb"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1}, {6}, {3}}, out)
	assert.Equal(t, []int{2}, next.batchSizes)

	_, err = svc.EmbedBatch(ctx, []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, next.batchSizes)
}

func TestDelegates(t *testing.T) {
	svc := Wrap(&countingEmbedder{}, 10, time.Minute)
	assert.Equal(t, "counting", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
