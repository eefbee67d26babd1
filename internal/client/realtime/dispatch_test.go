package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calls struct {
	mu  sync.Mutex
	got []string
}

func (c *calls) add(s string) {
	c.mu.Lock()
	c.got = append(c.got, s)
	c.mu.Unlock()
}

func (c *calls) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func TestDispatch_TypedThenWildcard(t *testing.T) {
	ch, _ := newChannel(t, &fakeDialer{}, "abc")
	var c calls

	ch.On("*", func(ev models.Event) { c.add("wild:" + ev.Type + ":" + string(ev.Data)) })
	ch.On(models.EventNotification, func(ev models.Event) { c.add("typed-1") })
	ch.On(models.EventNotification, func(ev models.Event) { c.add("typed-2") })
	ch.On(models.EventNotificationRead, func(ev models.Event) { c.add("other") })

	ch.dispatch([]byte(`{"type":"notification","data":{"id":3}}`))

	assert.Equal(t, []string{"typed-1", "typed-2", `wild:notification:{"id":3}`}, c.list())
}

func TestDispatch_PanickingHandlerIsIsolated(t *testing.T) {
	ch, _ := newChannel(t, &fakeDialer{}, "abc")
	var c calls

	ch.On(models.EventNotification, func(models.Event) { panic("boom") })
	ch.On(models.EventNotification, func(models.Event) { c.add("h2") })
	ch.On("*", func(models.Event) { c.add("wild") })

	require.NotPanics(t, func() {
		ch.dispatch([]byte(`{"type":"notification","data":{}}`))
	})
	assert.Equal(t, []string{"h2", "wild"}, c.list())
}

func TestOn_UnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	ch, _ := newChannel(t, &fakeDialer{}, "abc")
	var c calls

	same := func(models.Event) { c.add("x") }
	unsubA := ch.On("notification", same)
	ch.On("notification", same)

	unsubA()
	unsubA()
	ch.dispatch([]byte(`{"type":"notification"}`))

	assert.Equal(t, []string{"x"}, c.list())
}

func TestDispatch_IgnoresUnreadableFrames(t *testing.T) {
	ch, _ := newChannel(t, &fakeDialer{}, "abc")
	var c calls
	ch.On("*", func(ev models.Event) { c.add(ev.Type) })

	ch.dispatch([]byte(`not json`))
	ch.dispatch([]byte(`{"data":1}`))
	ch.dispatch([]byte(`{"type":"ping"}`))

	assert.Equal(t, []string{"ping"}, c.list())
}

func TestDispatch_FramesFromConnectionInOrder(t *testing.T) {
	conn := newFakeConn()
	ch, _ := newChannel(t, &fakeDialer{conns: []*fakeConn{conn}}, "abc")
	var c calls
	ch.On("*", func(ev models.Event) { c.add(ev.Type) })

	require.NoError(t, ch.Connect(context.Background()))
	conn.frames <- []byte(`{"type":"a"}`)
	conn.frames <- []byte(`{"type":"b"}`)
	conn.frames <- []byte(`{"type":"c"}`)

	require.Eventually(t, func() bool { return len(c.list()) == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, c.list())
}

func TestOnConnectionChange_Unsubscribe(t *testing.T) {
	ch, _ := newChannel(t, &fakeDialer{conns: []*fakeConn{newFakeConn()}}, "abc")
	var st states
	unsub := ch.OnConnectionChange(st.record)
	unsub()

	require.NoError(t, ch.Connect(context.Background()))
	assert.Empty(t, st.list())
}
