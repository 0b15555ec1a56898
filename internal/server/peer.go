package server

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/quietlark/ember/internal/resp"
)

// Peer represents a connected client. It wraps a network connection
// and provides synchronized writes, so the connection worker's replies
// and PUBLISH fan-out frames from other workers never interleave
// mid-frame.
//
// The worker's request loop uses Write + Flush so pipelined replies
// coalesce; Send is for cross-worker delivery, where nobody else will
// flush on the frame's behalf.
type Peer struct {
	conn   net.Conn
	reader *resp.Decoder
	writer *resp.Encoder
	mu     sync.Mutex

	subscriptions atomic.Int64 // channels this connection is registered on
}

// NewPeer initializes a new client peer from a network connection
func NewPeer(conn net.Conn) *Peer {
	return &Peer{
		conn:   conn,
		reader: resp.NewDecoder(conn),
		writer: resp.NewEncoder(conn),
	}
}

// Write encodes a RESP value into the output buffer without flushing.
// This method is thread-safe and can be called from multiple goroutines.
func (p *Peer) Write(v resp.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Write(v)
}

// Flush sends all buffered frames to the client
func (p *Peer) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writer.Flush()
}

// Send encodes a RESP value and flushes it immediately
func (p *Peer) Send(v resp.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.writer.Write(v); err != nil {
		return err
	}
	return p.writer.Flush()
}

// ReadCommand reads the next request from the client's input stream
func (p *Peer) ReadCommand() (resp.Value, error) {
	return p.reader.ReadCommand()
}

// InputBuffered returns the number of request bytes already received
// but not yet decoded
func (p *Peer) InputBuffered() int {
	return p.reader.Buffered()
}

// Close terminates the underlying network connection
func (p *Peer) Close() error {
	return p.conn.Close()
}

// RemoteAddr returns the client's address for logging
func (p *Peer) RemoteAddr() string {
	return p.conn.RemoteAddr().String()
}
