// Package bridge implements the two halves of the audio bridge. A Sender
// interleaves captured samples into a ring buffer and drains it to a UDP
// peer as fixed-size packets; a Receiver writes incoming packets into a ring
// buffer and deinterleaves them into the playback callback. Each half pairs
// a real-time Process method with a blocking network Run loop, communicating
// only through the ring buffer and the diagnostic channel.
package bridge
