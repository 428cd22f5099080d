package commands

import "strings"

func pubsubCommands() []*Command {
	return []*Command{
		{Name: "SUBSCRIBE", Arity: -2, Handler: cmdSubscribe, NoTxnBypass: true},
		{Name: "UNSUBSCRIBE", Arity: -1, Handler: cmdUnsubscribe, NoTxnBypass: true},
		{Name: "PSUBSCRIBE", Arity: -2, Handler: cmdPsubscribe, NoTxnBypass: true},
		{Name: "PUNSUBSCRIBE", Arity: -1, Handler: cmdPunsubscribe, NoTxnBypass: true},
		{Name: "PUBLISH", Arity: 3, Handler: cmdPublish},
		{Name: "PUBSUB", Arity: -2, Handler: cmdPubsub},
	}
}

// Subscribing commands are pushed out-of-band via pubsub.Subscriber.Notify,
// already invoked synchronously by the Hub call below; the Reply returned
// here is a formality the (out-of-scope) connection layer discards in
// favor of what it already pushed.
func cmdSubscribe(ctx *Context, argv [][]byte) Reply {
	if ctx.Sub == nil {
		return errReply(errSyntax())
	}
	for _, ch := range argv[1:] {
		ctx.Hub.Subscribe(ctx.Sub, string(ch))
	}
	return ok()
}

func cmdUnsubscribe(ctx *Context, argv [][]byte) Reply {
	if ctx.Sub == nil {
		return errReply(errSyntax())
	}
	channels := make([]string, len(argv)-1)
	for i, ch := range argv[1:] {
		channels[i] = string(ch)
	}
	ctx.Hub.Unsubscribe(ctx.Sub, channels...)
	return ok()
}

func cmdPsubscribe(ctx *Context, argv [][]byte) Reply {
	if ctx.Sub == nil {
		return errReply(errSyntax())
	}
	for _, p := range argv[1:] {
		ctx.Hub.SubscribePattern(ctx.Sub, string(p))
	}
	return ok()
}

func cmdPunsubscribe(ctx *Context, argv [][]byte) Reply {
	if ctx.Sub == nil {
		return errReply(errSyntax())
	}
	patterns := make([]string, len(argv)-1)
	for i, p := range argv[1:] {
		patterns[i] = string(p)
	}
	ctx.Hub.UnsubscribePattern(ctx.Sub, patterns...)
	return ok()
}

func cmdPublish(ctx *Context, argv [][]byte) Reply {
	n := ctx.Hub.Publish(string(argv[1]), argv[2])
	return integer(int64(n))
}

func cmdPubsub(ctx *Context, argv [][]byte) Reply {
	switch sub := string(argv[1]); {
	case strings.EqualFold(sub, "CHANNELS"):
		pattern := "*"
		if len(argv) > 2 {
			pattern = string(argv[2])
		}
		channels := ctx.Hub.Channels(pattern)
		items := make([]Reply, len(channels))
		for i, c := range channels {
			items[i] = bulk([]byte(c))
		}
		return array(items)
	case strings.EqualFold(sub, "NUMSUB"):
		names := make([]string, len(argv)-2)
		for i, c := range argv[2:] {
			names[i] = string(c)
		}
		counts := ctx.Hub.NumSub(names...)
		items := make([]Reply, 0, len(names)*2)
		for _, name := range names {
			items = append(items, bulk([]byte(name)), integer(int64(counts[name])))
		}
		return array(items)
	case strings.EqualFold(sub, "NUMPAT"):
		return integer(int64(ctx.Hub.NumPat()))
	default:
		return errReply(errSyntax())
	}
}
