package router

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/pubsub/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topic = "report.generated"

func testConfig() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.PubSub.Consumer.MaxRetries = 2
	cfg.PubSub.Consumer.InitialInterval = time.Millisecond
	cfg.PubSub.Consumer.MaxInterval = 5 * time.Millisecond
	cfg.PubSub.Consumer.MaxElapsedTime = time.Second
	return cfg
}

func runRouter(t *testing.T, handler func(*message.Message) error) (*Router, func(payload string)) {
	t.Helper()

	log := logger.NewNopLogger()
	ps := memory.NewPubSub(log)

	r, err := NewRouter(testConfig(), log, nil)
	require.NoError(t, err)
	r.AddNoPublishHandler("test_handler", topic, ps, handler)

	go func() {
		_ = r.Run()
	}()
	t.Cleanup(func() {
		_ = r.Close()
		_ = ps.Close()
	})

	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	publish := func(payload string) {
		require.NoError(t, ps.Publish(context.Background(), topic, message.NewMessage(watermill.NewUUID(), []byte(payload))))
	}
	return r, publish
}

func TestRouterDeliversMessages(t *testing.T) {
	received := make(chan string, 1)
	_, publish := runRouter(t, func(msg *message.Message) error {
		received <- string(msg.Payload)
		return nil
	})

	publish(`{"report_id":"r_1"}`)

	select {
	case payload := <-received:
		assert.Equal(t, `{"report_id":"r_1"}`, payload)
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestRouterRetriesTransientErrors(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	_, publish := runRouter(t, func(msg *message.Message) error {
		if atomic.AddInt32(&calls, 1) < 2 {
			return ierr.NewError("store unavailable").Mark(ierr.ErrDatabase)
		}
		close(done)
		return nil
	})

	publish(`{}`)

	select {
	case <-done:
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	case <-time.After(5 * time.Second):
		t.Fatal("message not retried")
	}
}

func TestRouterDropsPermanentErrors(t *testing.T) {
	var calls int32
	seen := make(chan struct{}, 2)
	_, publish := runRouter(t, func(msg *message.Message) error {
		atomic.AddInt32(&calls, 1)
		seen <- struct{}{}
		return ierr.NewError("bad payload").Mark(ierr.ErrValidation)
	})

	publish(`not json`)

	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}

	// give the retry middleware time to act if it were going to
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestShouldRetry(t *testing.T) {
	log := logger.NewNopLogger()

	assert.False(t, shouldRetry(log, ierr.NewError("x").Mark(ierr.ErrValidation)))
	assert.False(t, shouldRetry(log, ierr.NewError("x").Mark(ierr.ErrNotFound)))
	assert.True(t, shouldRetry(log, ierr.NewError("x").Mark(ierr.ErrDatabase)))
}
