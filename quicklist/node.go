package quicklist

import "github.com/kvcore/kvcore/packedlist"

// Encoding distinguishes a node's raw PackedList from a compressed image.
type Encoding int

const (
	EncodingRaw Encoding = iota
	EncodingCompressed
)

// Container identifies the payload container kind; spec.md §4.C names only
// "none" and "packed" — "none" is reserved for a future plain-value node,
// unused by this implementation since every node is PackedList-backed.
type Container int

const (
	ContainerNone Container = iota
	ContainerPacked
)

// Node is one doubly-linked quicklist node.
type Node struct {
	prev, next *Node

	packed     *packedlist.List // non-nil when encoding == EncodingRaw
	compressed []byte           // non-nil when encoding == EncodingCompressed
	codec      Codec

	entryCount int
	byteCount  int
	encoding   Encoding
	container  Container

	recompressPending bool
	attemptedCompress bool
}

func newNode(codec Codec) *Node {
	return &Node{
		packed:    packedlist.New(),
		codec:     codec,
		container: ContainerPacked,
		encoding:  EncodingRaw,
	}
}

func (n *Node) refreshCounts() {
	n.entryCount = n.packed.Len()
	n.byteCount = n.packed.BlobLen()
}

// ensureDecompressed returns the node's PackedList, decompressing in place
// if necessary and marking recompressPending so the next traversal that
// passes through compressInterior re-compresses it.
func (n *Node) ensureDecompressed() *packedlist.List {
	if n.encoding == EncodingRaw {
		return n.packed
	}
	raw := n.codec.Decompress(n.compressed)
	n.packed = packedlist.FromBytes(raw)
	n.compressed = nil
	n.encoding = EncodingRaw
	n.recompressPending = true
	return n.packed
}

// tryCompress attempts to compress the node's raw bytes with its codec,
// falling back to SnappyCodec when that codec's ratio disappoints, per
// spec.md §4.C. A node below minCompressibleBytes, or one that already
// failed every codec (attemptedCompress), is left raw.
func (n *Node) tryCompress() {
	if n.encoding != EncodingRaw || n.attemptedCompress {
		return
	}
	raw := n.packed.Bytes()
	if len(raw) < minCompressibleBytes {
		return
	}
	if n.compressWith(n.codec, raw) {
		return
	}
	if _, isSnappy := n.codec.(SnappyCodec); !isSnappy && n.compressWith(SnappyCodec{}, raw) {
		return
	}
	n.attemptedCompress = true
}

// compressWith tries codec against raw, committing the compressed image
// (and adopting codec as the node's codec, so ensureDecompressed reads it
// back correctly) only if it clears minCompressionRatio.
func (n *Node) compressWith(codec Codec, raw []byte) bool {
	compressed := codec.Compress(raw)
	if float64(len(raw))/float64(len(compressed)) < minCompressionRatio {
		return false
	}
	n.codec = codec
	n.compressed = compressed
	n.packed = nil
	n.encoding = EncodingCompressed
	n.recompressPending = false
	return true
}
