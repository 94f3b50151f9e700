package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-client/authmodel"
	tokenfakerepo "github.com/jrsteele09/go-session-client/token/repofake"
)

func TestWatchForeground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ex := &fakeExchanger{pair: authmodel.TokenPair{AccessToken: "tok2", RefreshToken: "ref2"}}
	m := newManager(tokenfakerepo.NewFakeTokenRepo(), ex)
	require.NoError(t, m.SetAuthData(ctx, tokenExpiringIn(t, 5*time.Minute), "ref1", testUser))

	events := make(chan struct{})
	done := make(chan struct{})
	go func() {
		m.WatchForeground(ctx, events)
		close(done)
	}()

	events <- struct{}{}
	require.Empty(t, ex.Calls())

	require.NoError(t, m.SetAuthData(ctx, tokenExpiringIn(t, time.Minute), "ref1", testUser))
	events <- struct{}{}
	require.Eventually(t, func() bool { return m.AccessToken() == "tok2" }, time.Second, time.Millisecond)
	require.Len(t, ex.Calls(), 1)

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after the event channel closed")
	}
}

func TestWatchInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ex := &fakeExchanger{pair: authmodel.TokenPair{AccessToken: "tok2", RefreshToken: "ref2"}}
	m := newManager(tokenfakerepo.NewFakeTokenRepo(), ex)
	require.NoError(t, m.SetAuthData(ctx, tokenExpiringIn(t, time.Minute), "ref1", testUser))

	done := make(chan struct{})
	go func() {
		m.WatchInterval(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return m.AccessToken() == "tok2" }, time.Second, time.Millisecond)
	cancel()
	<-done
	require.Len(t, ex.Calls(), 1)
}

func TestWatchIntervalDisabled(t *testing.T) {
	m := newManager(tokenfakerepo.NewFakeTokenRepo(), &fakeExchanger{})
	m.WatchInterval(context.Background(), 0)
}
