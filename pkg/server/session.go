// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nttcom/ancp/pkg/packet/ancp"
)

type AdjacencyState uint8

const (
	StateIdle AdjacencyState = iota
	StateSynSent
	StateSynReceived
	StateEstablished
)

func (st AdjacencyState) String() string {
	switch st {
	case StateIdle:
		return "Idle"
	case StateSynSent:
		return "SynSent"
	case StateSynReceived:
		return "SynReceived"
	case StateEstablished:
		return "Established"
	default:
		return "Unknown"
	}
}

// Session is one TCP connection to an ANCP peer and its adjacency.
type Session struct {
	server *Server
	peer   netip.AddrPort
	conn   net.Conn
	logger *zap.Logger

	writeMu sync.Mutex
	closed  bool

	mu           sync.Mutex
	state        AdjacencyState
	peerName     ancp.Name
	peerPort     uint32
	peerInstance uint32
	peerCaps     []ancp.CapabilityInterface
	lastSeen     time.Time
}

func NewSession(s *Server, peer netip.AddrPort, conn net.Conn) *Session {
	return &Session{
		server:   s,
		peer:     peer,
		conn:     conn,
		logger:   s.logger.With(zap.String("session", peer.String())),
		state:    StateIdle,
		lastSeen: time.Now(),
	}
}

func (ss *Session) Peer() netip.AddrPort {
	return ss.peer
}

func (ss *Session) State() AdjacencyState {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.state
}

func (ss *Session) IsEstablished() bool {
	return ss.State() == StateEstablished
}

// PeerCapabilities returns the capabilities the peer advertised in its last adjacency message.
func (ss *Session) PeerCapabilities() []ancp.CapabilityInterface {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]ancp.CapabilityInterface(nil), ss.peerCaps...)
}

func (ss *Session) Close() {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()
	if ss.closed {
		return
	}
	ss.closed = true
	ss.conn.Close()
}

func (ss *Session) write(data []byte) error {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()
	if ss.closed {
		return errSessionClosed
	}
	_, err := ss.conn.Write(data)
	return err
}

// Run reads messages until the peer goes away, keeping the adjacency alive meanwhile.
func (ss *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ss.receive(ctx); err != nil && !errors.Is(err, io.EOF) {
			ss.logger.Info("Receive ANCP message error", zap.Error(err))
		}
	}()

	ticker := time.NewTicker(ss.server.opts.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			ss.Close()
			<-done
			return
		case <-ticker.C:
			if ss.keepaliveExpired() {
				ss.logger.Info("Adjacency timed out")
				ss.sendAdjacency(ancp.AdjacencyRSTACK)
				ss.Close()
				<-done
				return
			}
			if ss.IsEstablished() {
				if err := ss.sendAdjacency(ancp.AdjacencyACK); err != nil {
					ss.logger.Info("Keepalive send error", zap.Error(err))
				}
			}
		}
	}
}

// keepaliveExpired reports whether the peer has been silent for three keepalive periods.
// A handshake that stalls in SynSent or SynReceived expires the same way.
func (ss *Session) keepaliveExpired() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return time.Since(ss.lastSeen) > 3*ss.server.opts.Keepalive
}

func (ss *Session) receive(ctx context.Context) error {
	for {
		data, err := ancp.ReadMessage(ss.conn)
		if err != nil {
			return err
		}

		m, err := ancp.DecodeMessage(data)
		if err != nil {
			ss.logger.Info("Drop malformed message", zap.Error(err))
			continue
		}
		ss.logger.Debug("Received ANCP message", zap.Object("message", m))

		if m.MessageType == ancp.MessageTypeAdjacency {
			if err := ss.handleAdjacency(ctx, m); err != nil {
				return err
			}
			continue
		}
		if !ss.IsEstablished() {
			ss.logger.Info("Drop message before adjacency", zap.Stringer("messageType", m.MessageType))
			continue
		}
		ss.touch()
		ss.server.deliver(ctx, ss.peer, m)
	}
}

func (ss *Session) touch() {
	ss.mu.Lock()
	ss.lastSeen = time.Now()
	ss.mu.Unlock()
}

func (ss *Session) handleAdjacency(ctx context.Context, m *ancp.Message) error {
	ss.mu.Lock()
	prev := ss.state
	ss.peerName = m.SenderName
	ss.peerPort = m.SenderPort
	ss.peerInstance = m.SenderInstance
	ss.peerCaps = m.Capabilities
	ss.lastSeen = time.Now()

	var reply ancp.AdjacencyCode
	switch m.AdjacencyCode {
	case ancp.AdjacencySYN:
		reply = ancp.AdjacencySYNACK
		if prev != StateEstablished {
			ss.state = StateSynReceived
		}
	case ancp.AdjacencySYNACK:
		reply = ancp.AdjacencyACK
		ss.state = StateEstablished
	case ancp.AdjacencyACK:
		if prev == StateSynReceived {
			ss.state = StateEstablished
		}
	case ancp.AdjacencyRSTACK:
		ss.state = StateIdle
	}
	next := ss.state
	ss.mu.Unlock()

	ss.logger.Info("Received Adjacency",
		zap.Stringer("code", m.AdjacencyCode),
		zap.Stringer("peerName", m.SenderName),
		zap.Stringer("state", next))

	if m.AdjacencyCode == ancp.AdjacencyRSTACK {
		ss.server.adjacencyChanged()
		if prev == StateEstablished {
			ss.server.deliver(ctx, ss.peer, nil)
		}
		return io.EOF
	}
	if reply != 0 {
		if err := ss.sendAdjacency(reply); err != nil {
			return err
		}
	}
	if prev != StateEstablished && next == StateEstablished {
		ss.logger.Info("ANCP adjacency established", zap.Stringer("peerName", m.SenderName))
		ss.server.adjacencyChanged()
		ss.server.deliver(ctx, ss.peer, m)
	}
	return nil
}

func (ss *Session) adjacencyMessage(code ancp.AdjacencyCode) *ancp.Message {
	o := ss.server.opts

	m := ancp.NewMessage(ancp.MessageTypeAdjacency)
	m.AdjacencyCode = code
	m.Timer = ancp.AdjacencyTimer(o.Keepalive)
	m.IsNASOriginated = o.Role == RoleNAS
	m.SenderName = o.Name
	m.SenderInstance = ss.server.instance
	m.Capabilities = ancp.DefaultCapabilities()

	ss.mu.Lock()
	m.ReceiverName = ss.peerName
	m.ReceiverPort = ss.peerPort
	m.ReceiverInstance = ss.peerInstance
	ss.mu.Unlock()
	return m
}

func (ss *Session) sendAdjacency(code ancp.AdjacencyCode) error {
	m := ss.adjacencyMessage(code)
	data, err := m.Serialize()
	if err != nil {
		return err
	}
	if code == ancp.AdjacencySYN {
		ss.mu.Lock()
		if ss.state == StateIdle {
			ss.state = StateSynSent
			ss.lastSeen = time.Now()
		}
		ss.mu.Unlock()
	}
	ss.logger.Debug("Send Adjacency", zap.Stringer("code", code))
	return ss.write(data)
}
