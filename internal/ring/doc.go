// Package ring provides a wait-free single-producer single-consumer byte ring buffer.
// It carries sample data between the real-time audio callback and the network
// goroutine without locks, allocation, or blocking on either side.
package ring
