// Package pubsub implements the channel/pattern fanout of spec.md §4.G:
// exact-channel subscription, glob-pattern subscription, and Publish
// fanout across both.
package pubsub

import "sync"

// Subscriber is any connection-like object a Hub can deliver to. The
// protocol layer implements this; pubsub only needs identity and delivery.
type Subscriber interface {
	// SubscriberID disambiguates two Subscriber values for map/slice
	// membership (a connection's address or an incrementing id).
	SubscriberID() uint64
	// Deliver sends a channel message: kind "message" for an exact-channel
	// publish, "pmessage" for a pattern match, with pattern set only in
	// the latter case.
	Deliver(kind, pattern, channel string, payload []byte)
	// Notify sends a subscribe/unsubscribe acknowledgement: kind one of
	// "subscribe"/"unsubscribe"/"psubscribe"/"punsubscribe", and the
	// subscriber's total subscription count after the change.
	Notify(kind, channelOrPattern string, count int)
}

type patternSub struct {
	sub     Subscriber
	pattern string
}

// Hub is the server-wide pub/sub registry.
type Hub struct {
	mu sync.Mutex

	channels map[string]map[uint64]Subscriber
	patterns []patternSub

	// subCounts tracks each subscriber's total subscription count
	// (channels + patterns) for the notification payload spec.md §4.G
	// requires ("including current total subscription count").
	subCounts map[uint64]int
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		channels:  make(map[string]map[uint64]Subscriber),
		subCounts: make(map[uint64]int),
	}
}

// Subscribe adds channel to sub's channel-set; a no-op if already present,
// per spec.md §4.G. Always sends the subscribe notification with the
// current total count.
func (h *Hub) Subscribe(sub Subscriber, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.channels[channel]
	if !ok {
		set = make(map[uint64]Subscriber)
		h.channels[channel] = set
	}
	if _, already := set[sub.SubscriberID()]; !already {
		set[sub.SubscriberID()] = sub
		h.subCounts[sub.SubscriberID()]++
	}
	sub.Notify("subscribe", channel, h.subCounts[sub.SubscriberID()])
}

// SubscribePattern appends pattern to sub's pattern-list; duplicates
// (by equality) are no-ops — spec.md §4.G.
func (h *Hub) SubscribePattern(sub Subscriber, pattern string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ps := range h.patterns {
		if ps.sub.SubscriberID() == sub.SubscriberID() && ps.pattern == pattern {
			sub.Notify("psubscribe", pattern, h.subCounts[sub.SubscriberID()])
			return
		}
	}
	h.patterns = append(h.patterns, patternSub{sub: sub, pattern: pattern})
	h.subCounts[sub.SubscriberID()]++
	sub.Notify("psubscribe", pattern, h.subCounts[sub.SubscriberID()])
}

// Unsubscribe removes channel from sub's subscriptions. If channels is
// empty, every channel sub is subscribed to is removed; a subscriber with
// zero channel subscriptions still gets one "nothing to unsubscribe"
// notification, per spec.md §4.G.
func (h *Hub) Unsubscribe(sub Subscriber, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(channels) == 0 {
		channels = h.channelsOf(sub)
	}
	if len(channels) == 0 {
		sub.Notify("unsubscribe", "", h.subCounts[sub.SubscriberID()])
		return
	}
	for _, ch := range channels {
		h.unsubscribeOne(sub, ch)
	}
}

func (h *Hub) channelsOf(sub Subscriber) []string {
	var out []string
	for ch, set := range h.channels {
		if _, ok := set[sub.SubscriberID()]; ok {
			out = append(out, ch)
		}
	}
	return out
}

func (h *Hub) unsubscribeOne(sub Subscriber, channel string) {
	set, ok := h.channels[channel]
	if !ok {
		sub.Notify("unsubscribe", channel, h.subCounts[sub.SubscriberID()])
		return
	}
	if _, ok := set[sub.SubscriberID()]; !ok {
		sub.Notify("unsubscribe", channel, h.subCounts[sub.SubscriberID()])
		return
	}
	delete(set, sub.SubscriberID())
	if len(set) == 0 {
		delete(h.channels, channel)
	}
	if n := h.subCounts[sub.SubscriberID()]; n > 0 {
		h.subCounts[sub.SubscriberID()] = n - 1
	}
	sub.Notify("unsubscribe", channel, h.subCounts[sub.SubscriberID()])
}

// UnsubscribePattern is Unsubscribe's pattern-list counterpart. A pattern
// that was never subscribed silently no-ops and still sends the
// notification — spec.md §9's open-question resolution, preserved.
func (h *Hub) UnsubscribePattern(sub Subscriber, patterns ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(patterns) == 0 {
		patterns = h.patternsOf(sub)
	}
	if len(patterns) == 0 {
		sub.Notify("punsubscribe", "", h.subCounts[sub.SubscriberID()])
		return
	}
	for _, p := range patterns {
		h.unsubscribePatternOne(sub, p)
	}
}

func (h *Hub) patternsOf(sub Subscriber) []string {
	var out []string
	for _, ps := range h.patterns {
		if ps.sub.SubscriberID() == sub.SubscriberID() {
			out = append(out, ps.pattern)
		}
	}
	return out
}

func (h *Hub) unsubscribePatternOne(sub Subscriber, pattern string) {
	for i, ps := range h.patterns {
		if ps.sub.SubscriberID() == sub.SubscriberID() && ps.pattern == pattern {
			h.patterns = append(h.patterns[:i], h.patterns[i+1:]...)
			if n := h.subCounts[sub.SubscriberID()]; n > 0 {
				h.subCounts[sub.SubscriberID()] = n - 1
			}
			break
		}
	}
	// Never subscribed (or already removed above): still notify.
	sub.Notify("punsubscribe", pattern, h.subCounts[sub.SubscriberID()])
}

// Publish fans out message to every exact subscriber of channel, then to
// every pattern subscriber whose pattern matches, returning the total
// delivery count — spec.md §4.G.
func (h *Hub) Publish(channel string, message []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for _, sub := range h.channels[channel] {
		sub.Deliver("message", "", channel, message)
		count++
	}
	for _, ps := range h.patterns {
		if MatchGlob(ps.pattern, channel) {
			ps.sub.Deliver("pmessage", ps.pattern, channel, message)
			count++
		}
	}
	return count
}

// Channels returns every channel with at least one subscriber, optionally
// filtered to those matching pattern (PUBSUB CHANNELS [pattern]).
func (h *Hub) Channels(pattern string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for ch := range h.channels {
		if pattern == "" || MatchGlob(pattern, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// NumSub returns the subscriber count for each requested channel
// (PUBSUB NUMSUB).
func (h *Hub) NumSub(channels ...string) map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]int, len(channels))
	for _, ch := range channels {
		out[ch] = len(h.channels[ch])
	}
	return out
}

// NumPat returns the total number of distinct pattern subscriptions
// (PUBSUB NUMPAT).
func (h *Hub) NumPat() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.patterns)
}
