package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"net"
	"time"
)

// Simple test tone generator for manual receiver testing.
// Sends a stereo sine wave to a running netaudio receiver as 480-byte UDP
// packets, so the playback path can be exercised without a capture device
// or a second machine.
//
// Usage: go run test_tone_sender.go -dest 127.0.0.1:4455 -freq 440

const (
	packetSize      = 480
	framesPerPacket = 60
	bytesPerFrame   = 8 // two little-endian float32 samples
)

func main() {
	dest := flag.String("dest", "127.0.0.1:4455", "Receiver address")
	freq := flag.Float64("freq", 440, "Tone frequency in Hz")
	rate := flag.Int("rate", 48000, "Sample rate in Hz, must match the receiver")
	amplitude := flag.Float64("amplitude", 0.2, "Tone amplitude, 0 to 1")
	duration := flag.Duration("duration", 10*time.Second, "How long to send")
	flag.Parse()

	addr, err := net.ResolveUDPAddr("udp", *dest)
	if err != nil {
		log.Fatalf("Invalid destination address: %v", err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	// One packet carries 60 frames, so the packet period is 60/rate seconds.
	interval := time.Duration(framesPerPacket) * time.Second / time.Duration(*rate)

	fmt.Printf("Sending %.0f Hz tone to %s (%d packets/s, %v)\n",
		*freq, *dest, int(time.Second/interval), *duration)

	packet := make([]byte, packetSize)
	phase := 0.0
	phaseStep := 2 * math.Pi * *freq / float64(*rate)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.Now().Add(*duration)

	packets := 0
	for time.Now().Before(deadline) {
		<-ticker.C

		for i := 0; i < framesPerPacket; i++ {
			sample := float32(*amplitude * math.Sin(phase))
			bits := math.Float32bits(sample)
			binary.LittleEndian.PutUint32(packet[i*bytesPerFrame:], bits)   // left
			binary.LittleEndian.PutUint32(packet[i*bytesPerFrame+4:], bits) // right
			phase += phaseStep
			if phase >= 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}

		if _, err := conn.Write(packet); err != nil {
			log.Fatalf("Send failed after %d packets: %v", packets, err)
		}
		packets++
	}

	fmt.Printf("Done, sent %d packets (%.1fs of audio)\n",
		packets, float64(packets*framesPerPacket)/float64(*rate))
}
