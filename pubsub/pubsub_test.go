package pubsub

import "testing"

type fakeSub struct {
	id        uint64
	delivered []delivery
	notified  []notification
}

type delivery struct {
	kind, pattern, channel string
	payload                []byte
}

type notification struct {
	kind, channelOrPattern string
	count                  int
}

func (f *fakeSub) SubscriberID() uint64 { return f.id }
func (f *fakeSub) Deliver(kind, pattern, channel string, payload []byte) {
	f.delivered = append(f.delivered, delivery{kind, pattern, channel, payload})
}
func (f *fakeSub) Notify(kind, channelOrPattern string, count int) {
	f.notified = append(f.notified, notification{kind, channelOrPattern, count})
}

func TestSubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	sub := &fakeSub{id: 1}
	h.Subscribe(sub, "news")
	h.Subscribe(sub, "news")
	if got := h.NumSub("news")["news"]; got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
	if sub.notified[len(sub.notified)-1].count != 1 {
		t.Fatalf("duplicate subscribe must not bump count")
	}
}

func TestPublishDeliversToExactAndPattern(t *testing.T) {
	h := NewHub()
	exact := &fakeSub{id: 1}
	pattern := &fakeSub{id: 2}
	h.Subscribe(exact, "news.weather")
	h.SubscribePattern(pattern, "news.*")

	n := h.Publish("news.weather", []byte("hello"))
	if n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if len(exact.delivered) != 1 || exact.delivered[0].kind != "message" {
		t.Fatalf("exact subscriber did not get a message delivery: %+v", exact.delivered)
	}
	if len(pattern.delivered) != 1 || pattern.delivered[0].kind != "pmessage" || pattern.delivered[0].pattern != "news.*" {
		t.Fatalf("pattern subscriber did not get a pmessage delivery: %+v", pattern.delivered)
	}
}

func TestPublishNonMatchingPatternGetsNothing(t *testing.T) {
	h := NewHub()
	sub := &fakeSub{id: 1}
	h.SubscribePattern(sub, "news.*")
	n := h.Publish("newsletter", []byte("hi"))
	if n != 0 {
		t.Fatalf("expected 0 deliveries, got %d", n)
	}
}

func TestUnsubscribeWithNoSubscriptionsStillNotifies(t *testing.T) {
	h := NewHub()
	sub := &fakeSub{id: 1}
	h.Unsubscribe(sub)
	if len(sub.notified) != 1 || sub.notified[0].kind != "unsubscribe" {
		t.Fatalf("expected single nothing-to-unsubscribe notification, got %+v", sub.notified)
	}
}

func TestUnsubscribePatternNeverSubscribedNoOpsAndNotifies(t *testing.T) {
	h := NewHub()
	sub := &fakeSub{id: 1}
	h.UnsubscribePattern(sub, "never.seen.*")
	if len(sub.notified) != 1 || sub.notified[0].channelOrPattern != "never.seen.*" {
		t.Fatalf("expected a punsubscribe notification for the unknown pattern, got %+v", sub.notified)
	}
}

func TestChannelDroppedWhenLastSubscriberLeaves(t *testing.T) {
	h := NewHub()
	sub := &fakeSub{id: 1}
	h.Subscribe(sub, "news")
	h.Unsubscribe(sub, "news")
	if got := h.NumSub("news")["news"]; got != 0 {
		t.Fatalf("expected channel entry dropped, got %d subscribers", got)
	}
	if _, present := h.channels["news"]; present {
		t.Fatalf("empty channel map entry must be removed")
	}
}

func TestNumPatCountsDistinctPatternSubscriptions(t *testing.T) {
	h := NewHub()
	sub := &fakeSub{id: 1}
	h.SubscribePattern(sub, "a.*")
	h.SubscribePattern(sub, "b.*")
	h.SubscribePattern(sub, "a.*")
	if got := h.NumPat(); got != 2 {
		t.Fatalf("expected 2 distinct patterns, got %d", got)
	}
}
