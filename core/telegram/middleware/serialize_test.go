package middleware

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type senderContext struct {
	tele.Context

	user *tele.User
}

func (c *senderContext) Sender() *tele.User { return c.user }

func TestSerializeMiddlewareSameUser(t *testing.T) {
	const workers = 8

	var inside atomic.Int32
	var overlaps atomic.Int32

	handler := SerializeMiddleware(func(tele.Context) error {
		if !inside.CompareAndSwap(0, 1) {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		inside.Store(0)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &senderContext{user: &tele.User{ID: 7}}
			assert.NoError(t, handler(c))
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load(), "same-user updates ran concurrently")
}

func TestSerializeMiddlewareDistinctUsers(t *testing.T) {
	firstEntered := make(chan struct{})
	release := make(chan struct{})

	blocking := SerializeMiddleware(func(tele.Context) error {
		close(firstEntered)
		<-release
		return nil
	})
	passing := SerializeMiddleware(func(tele.Context) error { return nil })

	go func() {
		_ = blocking(&senderContext{user: &tele.User{ID: 1}})
	}()
	<-firstEntered

	// A different conversation must not wait on the first one.
	done := make(chan error, 1)
	go func() {
		done <- passing(&senderContext{user: &tele.User{ID: 2}})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second user blocked behind the first one")
	}
	close(release)
}
