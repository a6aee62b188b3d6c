package gshclient

import (
	"github.com/WilliamRagstad/gsh/pkg/frame"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// decompressFrame decompresses every segment's data in place, using the
// compression scheme negotiated in ServerHelloAck.
func decompressFrame(f *wire.Frame) error {
	for i, seg := range f.Segments {
		raw, err := frame.DecompressSegment(seg.Data)
		if err != nil {
			return err
		}
		f.Segments[i].Data = raw
	}
	return nil
}
