package protocol

import (
	"encoding/binary"
	"math"
)

// Wire format constants. A datagram carries raw interleaved stereo PCM with
// no header, no sequence number and no checksum beyond the transport's own.
const (
	SampleBytes = 4 // one 32-bit float PCM sample
	Channels    = 2 // always stereo
	FrameBytes  = Channels * SampleBytes

	// PacketSize is the exact payload length of every datagram. Received
	// datagrams of any other length are dropped.
	PacketSize      = 480
	FramesPerPacket = PacketSize / FrameBytes
)

// IsValidSize reports whether n bytes form exactly one wire packet.
func IsValidSize(n int) bool {
	return n == PacketSize
}

// InterleaveBytes encodes equal-length left and right channels into dst as
// little-endian float32 samples in L,R,L,R order and returns the number of
// bytes written. The caller guarantees len(left) == len(right) and that dst
// holds (len(left)+len(right))*SampleBytes bytes. It performs no allocation
// and is safe on the real-time path.
func InterleaveBytes(dst []byte, left, right []float32) int {
	n := 0
	for i := range left {
		binary.LittleEndian.PutUint32(dst[n:], math.Float32bits(left[i]))
		n += SampleBytes
		binary.LittleEndian.PutUint32(dst[n:], math.Float32bits(right[i]))
		n += SampleBytes
	}
	return n
}

// DeinterleaveBytes decodes interleaved little-endian float32 samples from
// src into the left and right channels and returns the number of bytes
// consumed. The caller guarantees len(left) == len(right) and that src holds
// (len(left)+len(right))*SampleBytes bytes.
func DeinterleaveBytes(left, right []float32, src []byte) int {
	n := 0
	for i := range left {
		left[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[n:]))
		n += SampleBytes
		right[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[n:]))
		n += SampleBytes
	}
	return n
}
