package telemetry_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/coman/internal/adapters/telemetry"
)

type collector struct {
	mu   sync.Mutex
	data []byte
	hits chan struct{}
}

func newCollector() *collector {
	return &collector{hits: make(chan struct{}, 1)}
}

func (c *collector) flush(p []byte) {
	c.mu.Lock()
	c.data = append(c.data, p...)
	c.mu.Unlock()
	select {
	case c.hits <- struct{}{}:
	default:
	}
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.data)
}

func TestBatchProcessor_FlushOnSize(t *testing.T) {
	c := newCollector()
	bp := telemetry.NewBatchProcessor(5, time.Hour, c.flush)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.String())

	_, err = bp.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, "123456", c.String())
}

func TestBatchProcessor_FlushOnTime(t *testing.T) {
	c := newCollector()
	bp := telemetry.NewBatchProcessor(100, 20*time.Millisecond, c.flush)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("Linking zlib\n"))
	require.NoError(t, err)

	select {
	case <-c.hits:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for flush")
	}
	assert.Equal(t, "Linking zlib\n", c.String())
}

func TestBatchProcessor_CloseFlushesAndRejectsWrites(t *testing.T) {
	c := newCollector()
	bp := telemetry.NewBatchProcessor(100, time.Hour, c.flush)

	_, err := bp.Write([]byte("pending"))
	require.NoError(t, err)
	bp.Flush()
	assert.Equal(t, "pending", c.String())

	_, err = bp.Write([]byte(" tail"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())
	require.NoError(t, bp.Close())
	assert.Equal(t, "pending tail", c.String())

	_, err = bp.Write([]byte("late"))
	assert.Error(t, err)
}

func TestBatchProcessor_ConcurrentWriters(t *testing.T) {
	c := newCollector()
	bp := telemetry.NewBatchProcessor(16, 5*time.Millisecond, c.flush)

	const workers, iterations = 8, 100
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for j := range iterations {
				_, _ = bp.Write([]byte("a"))
				if j%25 == 0 {
					bp.Flush()
				}
			}
		})
	}
	wg.Wait()
	require.NoError(t, bp.Close())

	assert.Len(t, c.String(), workers*iterations)
}
