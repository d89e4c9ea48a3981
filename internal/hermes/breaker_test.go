package hermes

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu       sync.Mutex
	subjects []string
	err      error
	closed   bool
}

func (r *recordingClient) Publish(subject string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return r.err
}

func (r *recordingClient) Close() { r.closed = true }

func (r *recordingClient) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subjects)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBreakerClientPassesThrough(t *testing.T) {
	rec := &recordingClient{}
	b := NewBreakerClient(rec, DefaultBreakerConfig(), discardLogger())

	require.NoError(t, b.Publish(SubjectRecommendServed("abc"), RecommendationServedEvent{}))
	assert.Equal(t, []string{"smartbottle.recommend.abc.served"}, rec.subjects)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerClientOpensAfterFailures(t *testing.T) {
	rec := &recordingClient{err: errors.New("nats: connection closed")}
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Hour
	b := NewBreakerClient(rec, cfg, discardLogger())

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, b.Publish("s", nil), rec.err)
	}
	assert.Equal(t, "open", b.State())

	err := b.Publish("s", nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, rec.calls())
}

func TestBreakerClientRecovers(t *testing.T) {
	rec := &recordingClient{err: errors.New("down")}
	cfg := DefaultBreakerConfig()
	cfg.FailureThreshold = 1
	cfg.Timeout = 10 * time.Millisecond
	b := NewBreakerClient(rec, cfg, discardLogger())

	_ = b.Publish("s", nil)
	require.Equal(t, "open", b.State())

	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, b.Publish("s", nil))
	assert.Equal(t, "closed", b.State())
}

func TestBreakerClientClose(t *testing.T) {
	rec := &recordingClient{}
	NewBreakerClient(rec, DefaultBreakerConfig(), discardLogger()).Close()
	assert.True(t, rec.closed)
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "smartbottle.predict.42.served", SubjectPredictServed("42"))
}

func TestStreamConfig(t *testing.T) {
	cfg := streamConfig()
	assert.Equal(t, StreamName, cfg.Name)
	assert.Equal(t, []string{"smartbottle.>"}, cfg.Subjects)
	assert.Equal(t, 168*time.Hour, cfg.MaxAge)
}
