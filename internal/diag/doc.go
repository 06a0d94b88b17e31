// Package diag carries per-cycle outcome reports from the real-time audio
// callback to the network goroutine. Sends are best-effort and never block.
package diag
