// Package frame implements the row-granular diff algorithm that turns a
// current and previous pixel buffer into a minimal list of rectangle
// updates, plus the full-frame fallback and optional Zstandard
// compression helpers.
package frame

import "bytes"

// MinSegmentRows is the minimum height, in pixel rows, a partial
// segment must reach to be kept. Isolated, shorter runs of differing
// rows are dropped as noise.
const MinSegmentRows = 4

// MaxSegmentCount is the maximum number of segments emitted before the
// engine abandons partial diffing and falls back to a single full-frame
// segment.
const MaxSegmentCount = 50

// Segment is a rectangular region of a frame: row-granular, so X is
// always 0 and Width is always the frame width for partial updates.
type Segment struct {
	X, Y          int
	Width, Height int
	Data          []byte
}

// Diff compares curr against prev row by row and returns one Segment
// per run of consecutive differing rows. A run shorter than
// MinSegmentRows is dropped unless it extends to the last row, so rows
// in such a dropped run are not reproduced when the result is applied
// on top of prev. Rows lying beyond the end of prev (all rows when prev
// is nil) are treated as differing; with a nil prev the result is one
// segment covering the whole frame. If keeping a run would exceed
// MaxSegmentCount, the result is a single full-frame segment instead.
func Diff(prev, curr []byte, width, height, bytesPerPixel int) []Segment {
	rowStride := width * bytesPerPixel

	var segments []Segment
	var current *Segment

	closeCurrent := func(applyGate bool) bool {
		if current == nil {
			return true
		}
		if applyGate && current.Height < MinSegmentRows {
			current = nil
			return true
		}
		if len(segments)+1 > MaxSegmentCount {
			return false
		}
		segments = append(segments, *current)
		current = nil
		return true
	}

	for y := 0; y < height; y++ {
		differs := rowDiffers(prev, curr, y, rowStride)
		if !differs {
			if !closeCurrent(true) {
				return []Segment{FullFrame(curr, width, height)}
			}
			continue
		}

		if current != nil && current.Y+current.Height == y {
			current.Height++
			current.Data = append(current.Data, curr[y*rowStride:(y+1)*rowStride]...)
			continue
		}

		if !closeCurrent(true) {
			return []Segment{FullFrame(curr, width, height)}
		}
		current = &Segment{
			X: 0, Y: y, Width: width, Height: 1,
			Data: append([]byte(nil), curr[y*rowStride:(y+1)*rowStride]...),
		}
	}

	// The final in-progress segment is always kept, without the
	// MinSegmentRows gate applied to every other segment (see DESIGN.md
	// for the Open Question this resolves).
	if current != nil {
		if len(segments)+1 > MaxSegmentCount {
			return []Segment{FullFrame(curr, width, height)}
		}
		segments = append(segments, *current)
	}

	return segments
}

func rowDiffers(prev, curr []byte, y, rowStride int) bool {
	start := y * rowStride
	end := start + rowStride
	if prev == nil || len(prev) < end {
		return true
	}
	return !bytes.Equal(prev[start:end], curr[start:end])
}

// FullFrame produces a single segment covering the entire frame,
// without diffing against any previous buffer.
func FullFrame(curr []byte, width, height int) Segment {
	return Segment{
		X: 0, Y: 0, Width: width, Height: height,
		Data: append([]byte(nil), curr...),
	}
}
