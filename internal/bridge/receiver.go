package bridge

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/xnor99/netaudio/internal/config"
	"github.com/xnor99/netaudio/internal/diag"
	"github.com/xnor99/netaudio/internal/metrics"
	"github.com/xnor99/netaudio/internal/protocol"
	"github.com/xnor99/netaudio/internal/ring"
	"github.com/xnor99/netaudio/internal/soundcard"
)

// A UDP read silently truncates the datagram to the buffer length, so the
// receive buffer must exceed PacketSize for oversized datagrams to be
// detected and dropped.
const recvBufferSize = 2048

// Receiver moves audio from a UDP peer to the playback device. The network
// loop owns the ring buffer's writer half, the socket and the packet buffer;
// the playback callback owns the reader half and the scratch buffer.
type Receiver struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	writer *ring.Writer
	reader *ring.Reader
	diag   *diag.Channel
	conn   *net.UDPConn

	scratch []byte // deinterleave staging, playback callback only
	packet  []byte // one incoming datagram, network loop only
}

// NewReceiver binds a UDP socket to bind and allocates the ring buffer and
// scratch storage. No goroutines are started.
func NewReceiver(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, bind *net.UDPAddr) (*Receiver, error) {
	writer, reader, err := ring.New(cfg.Audio.RingCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create ring buffer: %w", err)
	}

	conn, err := net.ListenUDP("udp", bind)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP: %w", err)
	}

	if cfg.Network.ReadBuffer > 0 {
		if err := conn.SetReadBuffer(cfg.Network.ReadBuffer); err != nil {
			logger.Warn("Failed to set UDP read buffer size",
				slog.Int("buffer_size", cfg.Network.ReadBuffer),
				slog.String("error", err.Error()),
			)
		}
	}

	return &Receiver{
		logger:  logger,
		metrics: m,
		writer:  writer,
		reader:  reader,
		diag:    diag.NewChannel(diag.DefaultCapacity),
		conn:    conn,
		scratch: make([]byte, cfg.Audio.ScratchBytes()),
		packet:  make([]byte, recvBufferSize),
	}, nil
}

// Process handles one playback cycle. It runs on the device thread and must
// not block, allocate or lock. Mismatched or oversized port buffers are
// fatal to the audio path. When the ring buffer holds less than a full
// cycle, both channels play silence and the buffered bytes stay untouched.
func (r *Receiver) Process(left, right []float32) soundcard.Control {
	if len(left) != len(right) {
		r.diag.TrySend(diag.Message{Kind: diag.InvalidBufferLengths})
		return soundcard.Quit
	}
	required := (len(left) + len(right)) * protocol.SampleBytes
	if required > len(r.scratch) {
		r.diag.TrySend(diag.Message{Kind: diag.InvalidBufferLengths})
		return soundcard.Quit
	}

	if available := r.reader.Length(); available < required {
		r.diag.TrySend(diag.Message{Kind: diag.Underrun, Expected: required, Available: available})
		zeroSamples(left)
		zeroSamples(right)
		return soundcard.Continue
	}

	r.reader.Read(r.scratch[:required])
	protocol.DeinterleaveBytes(left, right, r.scratch[:required])
	return soundcard.Continue
}

// Run is the network loop. Each iteration drains pending diagnostics, then
// blocks on the socket for one datagram. Wrong-sized datagrams are dropped,
// as are packets arriving while the ring buffer lacks room for a full one.
// A receive error is fatal and returned.
func (r *Receiver) Run() error {
	r.logger.Info("Receiver network loop started",
		slog.String("local_addr", r.conn.LocalAddr().String()),
	)

	for {
		r.logDiagnostics()

		n, _, err := r.conn.ReadFromUDP(r.packet)
		if err != nil {
			return fmt.Errorf("failed to receive packet: %w", err)
		}

		if !protocol.IsValidSize(n) {
			r.logger.Warn("Dropping packet of unexpected size",
				slog.Int("expected", protocol.PacketSize),
				slog.Int("got", n),
			)
			r.metrics.RecordInvalidPacket()
			continue
		}

		if free := r.writer.Free(); free < protocol.PacketSize {
			r.logger.Warn("Ring buffer overrun, packet dropped",
				slog.Int("expected", protocol.PacketSize),
				slog.Int("available", free),
			)
			r.metrics.RecordOverrun()
			continue
		}

		r.writer.Write(r.packet[:protocol.PacketSize])
		r.metrics.RecordPacketReceived()
		r.metrics.SetRingBuffered(r.writer.Capacity() - r.writer.Free())
	}
}

// logDiagnostics polls the diagnostic channel without blocking until it is
// empty.
func (r *Receiver) logDiagnostics() {
	for {
		msg, ok := r.diag.TryRecv()
		if !ok {
			return
		}

		switch msg.Kind {
		case diag.Underrun:
			r.logger.Warn("Ring buffer underrun, playing silence",
				slog.Int("expected", msg.Expected),
				slog.Int("available", msg.Available),
			)
			r.metrics.RecordUnderrun()
		case diag.InvalidBufferLengths:
			r.logger.Error("Audio callback reported invalid buffer lengths")
		}
	}
}

func zeroSamples(p []float32) {
	for i := range p {
		p[i] = 0
	}
}
