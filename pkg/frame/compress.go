package frame

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressSegments compresses each segment's Data independently at the
// given zstd level, returning a new slice (the input is left
// untouched). Used when a service elects per-segment compression over
// partial-diff updates; each segment keeps its own (x,y,w,h) but its
// Data length no longer equals width*height*bytesPerPixel once
// compressed — callers must track that out of band (the wire
// compression negotiation covers this).
func CompressSegments(segs []Segment, level int) ([]Segment, error) {
	enc, err := newEncoder(level)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = s
		out[i].Data = enc.EncodeAll(s.Data, nil)
	}
	return out, nil
}

// CompressFullFrame compresses curr as a single byte stream and wraps it
// as one full-frame segment. This is a distinct operation from
// CompressSegments: a service that elects full-frame compression
// deliberately breaks the len(data) == width*height*bytesPerPixel
// invariant (see DESIGN.md), since the whole point is to compress once
// per frame rather than per diff segment.
func CompressFullFrame(curr []byte, width, height, level int) (Segment, error) {
	enc, err := newEncoder(level)
	if err != nil {
		return Segment{}, err
	}
	defer enc.Close()

	return Segment{
		X: 0, Y: 0, Width: width, Height: height,
		Data: enc.EncodeAll(curr, nil),
	}, nil
}

// DecompressSegment reverses CompressSegments/CompressFullFrame for one
// segment's Data.
func DecompressSegment(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("frame: new zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func newEncoder(level int) (*zstd.Encoder, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("frame: new zstd encoder: %w", err)
	}
	return enc, nil
}
