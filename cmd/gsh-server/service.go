package main

import (
	"math"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/frame"
	"github.com/WilliamRagstad/gsh/pkg/gshserver"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// FrameSource produces the next pixel buffer for one logical window.
// Real screen capture is an external collaborator out of scope here;
// this example uses a synthetic generator below so the binary runs
// standalone.
type FrameSource interface {
	NextFrame() []byte
	Width() int
	Height() int
}

const bytesPerPixel = 4

// compressionLevel is the zstd level applied to every segment sent,
// matching the level advertised in ServerHello.
const compressionLevel = 3

// remoteDesktopService is the example Service: one window, double
// buffered, row-diffed against the previous frame each tick.
type remoteDesktopService struct {
	gshserver.BaseService

	source   FrameSource
	verifier auth.Verifier

	curr, prev []byte
}

func newRemoteDesktopService(source FrameSource, verifier auth.Verifier) *remoteDesktopService {
	return &remoteDesktopService{source: source, verifier: verifier}
}

func (s *remoteDesktopService) Clone() gshserver.Service {
	return newRemoteDesktopService(s.source, s.verifier)
}

func (s *remoteDesktopService) ServerHello() wire.ServerHelloAck {
	authMethod := wire.AuthMethod{Kind: wire.AuthMethodNone}
	if s.verifier != nil {
		authMethod.Kind = wire.AuthMethodPassword
	}
	return wire.ServerHelloAck{
		Format:      wire.PixelFormatRGBA,
		Compression: wire.Compression{Kind: wire.CompressionZstd, Level: compressionLevel},
		Windows:     []wire.WindowSettings{WindowSettingsFor(s.source)},
		AuthMethod: authMethod,
	}
}

func (s *remoteDesktopService) AuthVerifier() auth.Verifier { return s.verifier }

func (s *remoteDesktopService) OnStartup(conn *gshserver.Conn) {
	s.curr = s.source.NextFrame()
	seg, err := frame.CompressFullFrame(s.curr, s.source.Width(), s.source.Height(), compressionLevel)
	if err != nil {
		conn.Log().Warn().Err(err).Msg("gsh-server: compress initial frame")
		s.prev = s.curr
		return
	}
	_ = conn.SendFrame(wire.Frame{
		WindowID: 1, Width: uint32(s.source.Width()), Height: uint32(s.source.Height()),
		Segments: []wire.Segment{toWireSegment(seg)},
	})
	s.prev = s.curr
}

func (s *remoteDesktopService) OnTick(conn *gshserver.Conn) {
	s.curr = s.source.NextFrame()
	segs := frame.Diff(s.prev, s.curr, s.source.Width(), s.source.Height(), bytesPerPixel)
	if len(segs) == 0 {
		s.prev = s.curr
		return
	}

	compressed, err := frame.CompressSegments(segs, compressionLevel)
	if err != nil {
		conn.Log().Warn().Err(err).Msg("gsh-server: compress segments")
		s.prev = s.curr
		return
	}

	wireSegs := make([]wire.Segment, len(compressed))
	for i, seg := range compressed {
		wireSegs[i] = toWireSegment(seg)
	}
	_ = conn.SendFrame(wire.Frame{
		WindowID: 1, Width: uint32(s.source.Width()), Height: uint32(s.source.Height()),
		Segments: wireSegs,
	})
	s.prev = s.curr
}

func (s *remoteDesktopService) OnEvent(conn *gshserver.Conn, event wire.ClientMessage) {
	if event.Kind != wire.ClientMsgUserInput {
		return
	}
	conn.Log().Debug().Uint8("inputKind", uint8(event.UserInput.Kind)).Msg("gsh-server: input received")
}

func (s *remoteDesktopService) OnExit(conn *gshserver.Conn) {
	s.curr, s.prev = nil, nil
}

func toWireSegment(s frame.Segment) wire.Segment {
	return wire.Segment{
		X: int32(s.X), Y: int32(s.Y),
		Width: uint32(s.Width), Height: uint32(s.Height),
		Data: s.Data,
	}
}

// WindowSettingsFor returns the single window this example service
// advertises, sized to match source.
func WindowSettingsFor(source FrameSource) wire.WindowSettings {
	return wire.WindowSettings{
		WindowID:    1,
		Title:       "gsh remote desktop",
		InitialMode: wire.WindowModeWindowed,
		Width:       uint32(clampDim(source.Width())),
		Height:      uint32(clampDim(source.Height())),
		AllowResize: true,
	}
}

func clampDim(v int) int {
	if v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return v
}
