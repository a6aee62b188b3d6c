package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bpp = 4

func makeFrame(width, height int, fill byte) []byte {
	return bytes.Repeat([]byte{fill}, width*height*bpp)
}

// apply reproduces curr by starting from prev and overlaying each
// segment's row-granular rectangle, modeling Property 4's definition.
func apply(prev []byte, width int, segs []Segment) []byte {
	out := append([]byte(nil), prev...)
	stride := width * bpp
	for _, s := range segs {
		if s.Width == width && s.Height*stride == len(s.Data) {
			copy(out[s.Y*stride:], s.Data)
		}
	}
	return out
}

// TestSegmentDiffIsolatedRowDropped covers Scenario S5: a single
// changed row surrounded by unchanged rows, below MinSegmentRows, with
// no tail carve-out in play, is dropped entirely.
func TestSegmentDiffIsolatedRowDropped(t *testing.T) {
	width, height := 100, 10
	prev := makeFrame(width, height, 0x00)
	curr := append([]byte(nil), prev...)
	curr[5*width*bpp] = 0xFF // one byte differs in row 5

	segs := Diff(prev, curr, width, height, bpp)
	assert.Empty(t, segs)
}

// TestSegmentDiffExtendedRun covers Scenario S6.
func TestSegmentDiffExtendedRun(t *testing.T) {
	width, height := 100, 10
	prev := makeFrame(width, height, 0x00)
	curr := append([]byte(nil), prev...)
	stride := width * bpp
	for y := 2; y <= 6; y++ {
		for i := 0; i < stride; i++ {
			curr[y*stride+i] = 0xAB
		}
	}

	segs := Diff(prev, curr, width, height, bpp)
	require.Len(t, segs, 1)
	assert.Equal(t, 0, segs[0].X)
	assert.Equal(t, 2, segs[0].Y)
	assert.Equal(t, width, segs[0].Width)
	assert.Equal(t, 5, segs[0].Height)
	assert.Equal(t, curr[2*stride:7*stride], segs[0].Data)
}

// TestSegmentationFallback covers Scenario S7: runs of MinSegmentRows
// changed rows separated by single unchanged rows produce 60 kept
// fragments, more than MaxSegmentCount, so the engine falls back to a
// single full-frame segment.
func TestSegmentationFallback(t *testing.T) {
	width, height := 10, 300
	prev := makeFrame(width, height, 0x00)
	curr := append([]byte(nil), prev...)
	stride := width * bpp
	for y := 0; y < height; y++ {
		if y%(MinSegmentRows+1) == MinSegmentRows {
			continue
		}
		for i := 0; i < stride; i++ {
			curr[y*stride+i] = 0xFF
		}
	}

	segs := Diff(prev, curr, width, height, bpp)
	require.Len(t, segs, 1)
	assert.Equal(t, width, segs[0].Width)
	assert.Equal(t, height, segs[0].Height)
	assert.Equal(t, curr, segs[0].Data)
}

// TestSegmentationBound covers Property 5 directly.
func TestSegmentationBound(t *testing.T) {
	width, height := 10, 400
	prev := makeFrame(width, height, 0x00)
	curr := append([]byte(nil), prev...)
	stride := width * bpp
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < height; y++ {
		if rng.Intn(2) == 0 {
			continue
		}
		for i := 0; i < stride; i++ {
			curr[y*stride+i] = byte(y)
		}
	}

	segs := Diff(prev, curr, width, height, bpp)
	assert.LessOrEqual(t, len(segs), MaxSegmentCount)
	if len(segs) == 1 && segs[0].Height == height {
		return // fallback path taken, trivially within bound
	}
}

// TestSegmentationCorrectness covers Property 4: applying the returned
// segments over prev reproduces curr bitwise, for both a present and an
// absent previous buffer.
func TestSegmentationCorrectness(t *testing.T) {
	width, height := 20, 30
	rng := rand.New(rand.NewSource(42))

	prev := make([]byte, width*height*bpp)
	rng.Read(prev)
	curr := append([]byte(nil), prev...)
	stride := width * bpp
	for y := 0; y < height; y++ {
		if rng.Intn(3) != 0 {
			continue
		}
		rng.Read(curr[y*stride : (y+1)*stride])
	}

	segs := Diff(prev, curr, width, height, bpp)
	got := apply(prev, width, segs)
	assert.Equal(t, curr, got)
}

// TestSegmentationCorrectnessNoPrevious covers the absent-P branch of
// Property 4: every pixel of curr must be covered.
func TestSegmentationCorrectnessNoPrevious(t *testing.T) {
	width, height := 16, 16
	curr := make([]byte, width*height*bpp)
	rand.New(rand.NewSource(7)).Read(curr)

	segs := Diff(nil, curr, width, height, bpp)
	got := apply(make([]byte, width*height*bpp), width, segs)
	assert.Equal(t, curr, got)
}

func TestFullFrameDoesNotMutateInput(t *testing.T) {
	curr := makeFrame(4, 4, 0x11)
	seg := FullFrame(curr, 4, 4)
	seg.Data[0] = 0xEE
	assert.Equal(t, byte(0x11), curr[0])
}

func TestCompressSegmentsRoundTrips(t *testing.T) {
	segs := []Segment{{X: 0, Y: 0, Width: 4, Height: 4, Data: makeFrame(4, 4, 0x42)}}
	compressed, err := CompressSegments(segs, 3)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	decompressed, err := DecompressSegment(compressed[0].Data)
	require.NoError(t, err)
	assert.Equal(t, segs[0].Data, decompressed)
}

func TestCompressFullFrameRoundTrips(t *testing.T) {
	curr := makeFrame(8, 8, 0x7A)
	seg, err := CompressFullFrame(curr, 8, 8, 3)
	require.NoError(t, err)

	decompressed, err := DecompressSegment(seg.Data)
	require.NoError(t, err)
	assert.Equal(t, curr, decompressed)
}
