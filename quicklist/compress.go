package quicklist

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
)

// Codec compresses and decompresses a node's raw PackedList bytes. Two real
// codecs from the corpus's transitive dependency set stand in for the
// "LZ-family image" spec.md §3 describes generically: s2 (an LZ4-family
// streaming codec shipped inside klauspost/compress) is the default, with
// snappy available as an alternate for nodes where s2's ratio disappoints.
type Codec interface {
	Compress(raw []byte) []byte
	Decompress(compressed []byte) []byte
}

// S2Codec is the default compression codec.
type S2Codec struct{}

func (S2Codec) Compress(raw []byte) []byte      { return s2.Encode(nil, raw) }
func (S2Codec) Decompress(compressed []byte) []byte {
	out, err := s2.Decode(nil, compressed)
	if err != nil {
		fatalf("quicklist: corrupted s2 node image", err)
	}
	return out
}

// SnappyCodec is the alternate codec, selected per-node when s2 fails to
// beat minCompressionRatio.
type SnappyCodec struct{}

func (SnappyCodec) Compress(raw []byte) []byte { return snappy.Encode(nil, raw) }
func (SnappyCodec) Decompress(compressed []byte) []byte {
	out, err := snappy.Decode(nil, compressed)
	if err != nil {
		fatalf("quicklist: corrupted snappy node image", err)
	}
	return out
}

// minCompressibleBytes is the threshold below which compression is never
// attempted — spec.md §4.C "below which compression is never profitable".
const minCompressibleBytes = 48

// minCompressionRatio is the minimum raw/compressed ratio required to keep
// a compressed image; below this the node stays raw and is marked
// attemptedCompress to skip future attempts (spec.md §4.C).
const minCompressionRatio = 1.05
