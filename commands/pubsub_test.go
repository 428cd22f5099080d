package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeAndPublishDelivers(t *testing.T) {
	h := newHarness(t)
	sub := &fakeConn{id: 1}
	h.ctx.Sub = sub
	h.run("SUBSCRIBE", "news")
	require.Contains(t, sub.notified, "subscribe:news")

	r := h.run("PUBLISH", "news", "hello")
	require.EqualValues(t, 1, r.Int)
	require.Contains(t, sub.delivered, "message:news:hello")
}

func TestUnsubscribeWithNoArgsUnsubscribesAll(t *testing.T) {
	h := newHarness(t)
	sub := &fakeConn{id: 1}
	h.ctx.Sub = sub
	h.run("SUBSCRIBE", "a", "b")
	h.run("UNSUBSCRIBE")
	require.EqualValues(t, 0, h.run("PUBSUB", "NUMSUB", "a").Array[1].Int)
}

func TestPubsubChannelsListsActiveChannels(t *testing.T) {
	h := newHarness(t)
	sub := &fakeConn{id: 1}
	h.ctx.Sub = sub
	h.run("SUBSCRIBE", "foo")
	r := h.run("PUBSUB", "CHANNELS", "*")
	require.Len(t, r.Array, 1)
	require.Equal(t, "foo", string(r.Array[0].Bytes))
}

func TestPubsubNumpatCountsPatternSubscriptions(t *testing.T) {
	h := newHarness(t)
	sub := &fakeConn{id: 1}
	h.ctx.Sub = sub
	h.run("PSUBSCRIBE", "news.*")
	r := h.run("PUBSUB", "NUMPAT")
	require.EqualValues(t, 1, r.Int)
}
