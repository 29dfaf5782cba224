// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"net"
	"testing"
	"time"
)

// listen binds a loopback UDP receiver and returns it with its address.
func listen(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen UDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, conn.LocalAddr().String()
}

func TestSenderDelivers(t *testing.T) {
	recv, addr := listen(t)

	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	payload := []byte{1, 2, 3, 4}
	if err := sender.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	recv.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := recv.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if n != len(payload) {
		t.Errorf("packet size: got %d, want %d", n, len(payload))
	}
}

func TestSenderClosedRejectsSend(t *testing.T) {
	_, addr := listen(t)

	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if err := sender.Send([]byte{1}); err == nil {
		t.Error("Send after Close should fail")
	}
}

func TestPublisherPacketFormat(t *testing.T) {
	recv, addr := listen(t)

	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	stats := Stats{
		CapturedChunks:  10,
		RecognizedTexts: 4,
		DroppedChunks:   2,
		Errors:          1,
	}
	pub, err := NewPublisher(10*time.Millisecond, sender, func() Stats { return stats })
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	pub.Start()
	defer pub.Stop()

	recv.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 128)
	n, _, err := recv.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if n != 44 {
		t.Fatalf("packet size: got %d, want 44", n)
	}

	seq := binary.BigEndian.Uint32(buf[0:4])
	if seq == 0 {
		t.Error("sequence number should start at 1")
	}
	if got := binary.BigEndian.Uint64(buf[12:20]); got != stats.CapturedChunks {
		t.Errorf("captured: got %d, want %d", got, stats.CapturedChunks)
	}
	if got := binary.BigEndian.Uint64(buf[20:28]); got != stats.RecognizedTexts {
		t.Errorf("recognized: got %d, want %d", got, stats.RecognizedTexts)
	}
	if got := binary.BigEndian.Uint64(buf[28:36]); got != stats.DroppedChunks {
		t.Errorf("dropped: got %d, want %d", got, stats.DroppedChunks)
	}
	if got := binary.BigEndian.Uint64(buf[36:44]); got != stats.Errors {
		t.Errorf("errors: got %d, want %d", got, stats.Errors)
	}
}

func TestPublisherStopIdempotent(t *testing.T) {
	_, addr := listen(t)

	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	pub, err := NewPublisher(time.Hour, sender, func() Stats { return Stats{} })
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	// Stop before Start is a no-op.
	if err := pub.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}

	pub.Start()
	if err := pub.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := pub.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	// A stopped publisher can start again.
	pub.Start()
	if err := pub.Stop(); err != nil {
		t.Errorf("Stop after restart: %v", err)
	}
}

func TestNewPublisherValidation(t *testing.T) {
	_, addr := listen(t)
	sender, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()

	if _, err := NewPublisher(time.Second, nil, func() Stats { return Stats{} }); err == nil {
		t.Error("nil sender should be rejected")
	}
	if _, err := NewPublisher(time.Second, sender, nil); err == nil {
		t.Error("nil snapshot func should be rejected")
	}
}
