package commands

// ReplyKind tags the shape of a Reply. The wire encoding (RESP2's 2-array
// form vs a typed 3-variant form) is the protocol layer's concern per
// spec.md §6 — commands only ever produces these opaque values.
type ReplyKind int

const (
	ReplyOK ReplyKind = iota
	ReplySimpleString
	ReplyBulk
	ReplyInteger
	ReplyArray
	ReplyNullBulk
	ReplyNullArray
	ReplyError
)

// Reply is the opaque result of running a command, handed to the protocol
// layer's encoder.
type Reply struct {
	Kind  ReplyKind
	Str   string
	Bytes []byte
	Int   int64
	Array []Reply
	Err   error
}

func ok() Reply                 { return Reply{Kind: ReplyOK, Str: "OK"} }
func simple(s string) Reply     { return Reply{Kind: ReplySimpleString, Str: s} }
func bulk(b []byte) Reply       { return Reply{Kind: ReplyBulk, Bytes: b} }
func integer(n int64) Reply     { return Reply{Kind: ReplyInteger, Int: n} }
func array(items []Reply) Reply { return Reply{Kind: ReplyArray, Array: items} }
func nullBulk() Reply           { return Reply{Kind: ReplyNullBulk} }
func nullArray() Reply          { return Reply{Kind: ReplyNullArray} }
func errReply(err error) Reply  { return Reply{Kind: ReplyError, Err: err} }
