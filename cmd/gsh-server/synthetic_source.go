package main

import (
	"os"

	"github.com/WilliamRagstad/gsh/pkg/auth"
)

// syntheticFrameSource produces a scrolling gradient, standing in for a
// real screen-capture collaborator so the example binary runs without
// any platform-specific capture dependency.
type syntheticFrameSource struct {
	width, height int
	tick          int
}

func newSyntheticFrameSource() *syntheticFrameSource {
	return &syntheticFrameSource{width: 640, height: 480}
}

func (s *syntheticFrameSource) Width() int  { return s.width }
func (s *syntheticFrameSource) Height() int { return s.height }

func (s *syntheticFrameSource) NextFrame() []byte {
	s.tick++
	buf := make([]byte, s.width*s.height*bytesPerPixel)
	offset := byte(s.tick % 256)
	for y := 0; y < s.height; y++ {
		row := byte(y) + offset
		base := y * s.width * bytesPerPixel
		for x := 0; x < s.width; x++ {
			i := base + x*bytesPerPixel
			buf[i+0] = row
			buf[i+1] = byte(x)
			buf[i+2] = offset
			buf[i+3] = 0xFF
		}
	}
	return buf
}

// verifierFromEnv builds a password verifier from GSH_PASSWORD if set,
// otherwise returns nil (no auth required).
func verifierFromEnv() auth.Verifier {
	password := os.Getenv("GSH_PASSWORD")
	if password == "" {
		return nil
	}
	return auth.StaticPasswordVerifier{Password: password}
}
