// Package protocol defines the wire format: fixed 480-byte UDP datagrams of
// interleaved little-endian 32-bit float stereo PCM, 60 frames per packet.
package protocol
