package commands

import (
	"testing"

	"github.com/kvcore/kvcore/keyspace"
	"github.com/kvcore/kvcore/pubsub"
	"github.com/kvcore/kvcore/txn"
)

// testHarness bundles a Dispatcher with the Context it dispatches into,
// letting each test drive commands through Dispatch exactly as a
// connection handler would.
type testHarness struct {
	d   *Dispatcher
	srv *keyspace.Server
	hub *pubsub.Hub
	ctx *Context
	now int64
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	cfg := keyspace.DefaultConfig
	cfg.Databases = 4
	srv := keyspace.NewServer(cfg)
	hub := pubsub.NewHub()
	h := &testHarness{d: NewDispatcher(), srv: srv, hub: hub, now: 1000}
	db, err := srv.Select(0)
	if err != nil {
		t.Fatal(err)
	}
	h.ctx = &Context{
		Server:    srv,
		Hub:       hub,
		Txn:       txn.NewConn(),
		DBID:      0,
		DB:        db,
		NowMillis: func() int64 { return h.now },
	}
	return h
}

func (h *testHarness) run(args ...string) Reply {
	argv := make([][]byte, len(args))
	for i, a := range args {
		argv[i] = []byte(a)
	}
	return h.d.Dispatch(h.ctx, argv)
}

type fakeConn struct {
	id        uint64
	delivered []string
	notified  []string
}

func (f *fakeConn) SubscriberID() uint64 { return f.id }
func (f *fakeConn) Deliver(kind, pattern, channel string, payload []byte) {
	f.delivered = append(f.delivered, kind+":"+channel+":"+string(payload))
}
func (f *fakeConn) Notify(kind, channelOrPattern string, count int) {
	f.notified = append(f.notified, kind+":"+channelOrPattern)
}
