// Package cdrwire provides low-level encoding primitives for the CDR
// (Common Data Representation) family of wire formats used by DDS/ROS 2.
//
// All offsets passed to functions in this package are relative to the
// start of the post-encapsulation-header payload: byte 4 of the overall
// message buffer is alignment origin 0.
package cdrwire

// Padding returns the number of zero bytes needed before offset so that
// the next write/read of width bytes starts aligned to width.
//
// Alignment is always relative to the payload origin, never to the start
// of the enclosing buffer: callers pass the same offset convention used
// everywhere else in this package (offset 0 == first payload byte).
func Padding(offset, width int) int {
	if width <= 1 {
		return 0
	}
	rem := offset % width
	if rem == 0 {
		return 0
	}
	return width - rem
}

// Align returns offset rounded up to the next multiple of width.
func Align(offset, width int) int {
	return offset + Padding(offset, width)
}

// Delimiter and member headers align to 4 bytes using the same
// payload-relative offset convention as everything else in this package,
// so header alignment is just Padding(offset, 4): no separate function
// is needed. (The reference implementation computes this as
// (bufOffset-4) mod width because it measures offsets from the start of
// the buffer, which includes the 4-byte encapsulation header; this
// package measures offsets from the start of the payload instead, so the
// "-4" correction is already baked into the coordinate system.)
