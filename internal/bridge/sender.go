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

// Sender moves captured audio to a UDP peer. The capture callback owns the
// ring buffer's writer half and the scratch buffer; the network loop owns
// the reader half, the socket and the packet buffer.
type Sender struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	writer *ring.Writer
	reader *ring.Reader
	diag   *diag.Channel
	conn   *net.UDPConn

	scratch []byte // interleave staging, capture callback only
	packet  []byte // one outgoing datagram, network loop only
}

// NewSender binds a UDP socket to bind, connected to dest, and allocates the
// ring buffer and scratch storage. No goroutines are started.
func NewSender(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, bind, dest *net.UDPAddr) (*Sender, error) {
	writer, reader, err := ring.New(cfg.Audio.RingCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create ring buffer: %w", err)
	}

	conn, err := net.DialUDP("udp", bind, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to connect UDP socket: %w", err)
	}

	if cfg.Network.WriteBuffer > 0 {
		if err := conn.SetWriteBuffer(cfg.Network.WriteBuffer); err != nil {
			logger.Warn("Failed to set UDP write buffer size",
				slog.Int("buffer_size", cfg.Network.WriteBuffer),
				slog.String("error", err.Error()),
			)
		}
	}

	return &Sender{
		logger:  logger,
		metrics: m,
		writer:  writer,
		reader:  reader,
		diag:    diag.NewChannel(diag.DefaultCapacity),
		conn:    conn,
		scratch: make([]byte, cfg.Audio.ScratchBytes()),
		packet:  make([]byte, protocol.PacketSize),
	}, nil
}

// Process handles one capture cycle. It runs on the device thread and must
// not block, allocate or lock. Mismatched or oversized port buffers are
// fatal to the audio path. A cycle that does not fit the ring buffer is
// dropped whole. Every surviving cycle ends with a Ready report that paces
// the network loop.
func (s *Sender) Process(left, right []float32) soundcard.Control {
	if len(left) != len(right) {
		s.diag.TrySend(diag.Message{Kind: diag.InvalidBufferLengths})
		return soundcard.Quit
	}
	required := (len(left) + len(right)) * protocol.SampleBytes
	if required > len(s.scratch) {
		s.diag.TrySend(diag.Message{Kind: diag.InvalidBufferLengths})
		return soundcard.Quit
	}

	if free := s.writer.Free(); free < required {
		s.diag.TrySend(diag.Message{Kind: diag.Overrun, Expected: required, Available: free})
		s.diag.TrySend(diag.Message{Kind: diag.Ready})
		return soundcard.Continue
	}

	n := protocol.InterleaveBytes(s.scratch, left, right)
	s.writer.Write(s.scratch[:n])
	s.diag.TrySend(diag.Message{Kind: diag.Ready})
	return soundcard.Continue
}

// Run is the network loop. It blocks on the diagnostic channel, logs stream
// conditions, and on every Ready drains the ring buffer to the socket one
// packet at a time. A send error is fatal and returned. A closed diagnostic
// channel drains like Ready, then Run returns nil.
func (s *Sender) Run() error {
	s.logger.Info("Sender network loop started",
		slog.String("local_addr", s.conn.LocalAddr().String()),
		slog.String("remote_addr", s.conn.RemoteAddr().String()),
	)

	for {
		msg, ok := s.diag.Recv()
		if !ok {
			return s.drain()
		}

		switch msg.Kind {
		case diag.InvalidBufferLengths:
			s.logger.Error("Audio callback reported invalid buffer lengths")
		case diag.Overrun:
			s.logger.Warn("Ring buffer overrun, cycle dropped",
				slog.Int("expected", msg.Expected),
				slog.Int("available", msg.Available),
			)
			s.metrics.RecordOverrun()
		case diag.Ready:
			if err := s.drain(); err != nil {
				return err
			}
		}
	}
}

// drain sends full packets until less than one remains buffered.
func (s *Sender) drain() error {
	sent := 0
	for s.reader.Length() >= protocol.PacketSize {
		s.reader.Read(s.packet)
		if _, err := s.conn.Write(s.packet); err != nil {
			return fmt.Errorf("failed to send packet: %w", err)
		}
		s.metrics.RecordPacketSent()
		sent++
	}
	if sent > 0 {
		s.metrics.RecordDrainBatch(sent)
	}
	s.metrics.SetRingBuffered(s.reader.Length())
	return nil
}
