package diag

import "fmt"

// Kind tags a diagnostic message.
type Kind uint8

const (
	// Ready reports a completed capture cycle; the sender network loop
	// paces its drain on it.
	Ready Kind = iota
	// InvalidBufferLengths reports mismatched or oversized port buffers.
	// It is fatal to the audio path.
	InvalidBufferLengths
	// Underrun reports that playback needed more bytes than were buffered.
	Underrun
	// Overrun reports that capture produced more bytes than would fit.
	Overrun
)

// String returns the log-friendly name of the kind.
func (k Kind) String() string {
	switch k {
	case Ready:
		return "ready"
	case InvalidBufferLengths:
		return "invalid buffer lengths"
	case Underrun:
		return "underrun"
	case Overrun:
		return "overrun"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Message describes the outcome of one callback cycle. Expected and
// Available are byte counts, meaningful for Underrun and Overrun.
type Message struct {
	Kind      Kind
	Expected  int
	Available int
}

// DefaultCapacity is the backlog a Channel holds before best-effort sends
// start dropping messages.
const DefaultCapacity = 256

// Channel is a one-way diagnostic queue. Producers on the real-time thread
// use TrySend; the single consumer drains it with Recv or TryRecv.
type Channel struct {
	ch chan Message
}

// NewChannel returns a channel holding up to capacity messages. Capacities
// below one fall back to DefaultCapacity.
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Channel{ch: make(chan Message, capacity)}
}

// TrySend enqueues m without ever blocking the caller. It reports false
// when the backlog is full and the message was dropped.
func (c *Channel) TrySend(m Message) bool {
	select {
	case c.ch <- m:
		return true
	default:
		return false
	}
}

// Recv blocks until a message arrives. The second result is false once the
// channel has been closed and drained.
func (c *Channel) Recv() (Message, bool) {
	m, ok := <-c.ch
	return m, ok
}

// TryRecv returns the next pending message without blocking. The second
// result is false when nothing is pending.
func (c *Channel) TryRecv() (Message, bool) {
	select {
	case m, ok := <-c.ch:
		return m, ok
	default:
		return Message{}, false
	}
}

// Close releases a consumer blocked in Recv. Only the producing side may
// close, after its last TrySend.
func (c *Channel) Close() {
	close(c.ch)
}
