// Package soundcard connects the bridge to the host audio subsystem through
// miniaudio. It presents each device cycle as a pair of equal-length
// left/right float32 port buffers and lets the callback ask the host to stop
// invoking it, mirroring the contract of a real-time audio graph client.
package soundcard
