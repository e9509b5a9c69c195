// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nttcom/ancp/pkg/agent"
	"github.com/nttcom/ancp/pkg/packet/ancp"
)

const (
	RoleNAS = "nas"
	RoleAN  = "an"
)

const (
	inboundQueueSize = 64
	redialInterval   = 5 * time.Second
	defaultKeepalive = 10 * time.Second
)

type Options struct {
	Role      string
	ANCPAddr  string
	ANCPPort  string
	GrpcAddr  string
	GrpcPort  string
	Name      ancp.Name
	Keepalive time.Duration
}

// Dispatcher consumes every message received on an established adjacency.
type Dispatcher interface {
	Handle(peer netip.AddrPort, m *ancp.Message) error
}

// PeerDownHandler is implemented by dispatchers that track state per peer.
type PeerDownHandler interface {
	PeerDown(peer netip.AddrPort)
}

// inboundMessage with a nil msg reports that the adjacency with peer is gone.
type inboundMessage struct {
	peer netip.AddrPort
	msg  *ancp.Message
}

// Server owns the TCP sessions of one ANCP speaker and implements agent.Transport.
// Inbound messages of all sessions are handed to the dispatcher from a single goroutine.
type Server struct {
	opts     Options
	logger   *zap.Logger
	instance uint32

	mu       sync.RWMutex
	sessions map[netip.AddrPort]*Session

	inbound chan inboundMessage
	health  *health.Server
}

var _ agent.Transport = (*Server)(nil)

func NewServer(o *Options, logger *zap.Logger) *Server {
	opts := *o
	if opts.Keepalive <= 0 {
		opts.Keepalive = defaultKeepalive
	}
	s := &Server{
		opts:     opts,
		logger:   logger.With(zap.String("server", "ancp")),
		instance: uint32(time.Now().UnixNano()) & 0xffffff,
		sessions: make(map[netip.AddrPort]*Session),
		inbound:  make(chan inboundMessage, inboundQueueSize),
		health:   health.NewServer(),
	}
	s.setServing(false)
	return s
}

// Serve runs the role selected in the options until ctx is done.
func (s *Server) Serve(ctx context.Context, d Dispatcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.dispatch(ctx, d)
	}()

	errCh := make(chan error, 2)
	if s.opts.GrpcPort != "" {
		grpcServer := grpc.NewServer()
		healthpb.RegisterHealthServer(grpcServer, s.health)
		go func() {
			errCh <- s.serveGrpc(grpcServer)
		}()
		defer grpcServer.GracefulStop()
	}

	go func() {
		switch s.opts.Role {
		case RoleNAS:
			errCh <- s.listen(ctx)
		case RoleAN:
			errCh <- s.dialLoop(ctx)
		default:
			errCh <- fmt.Errorf("unknown role %q", s.opts.Role)
		}
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	cancel()
	s.closeSessions()
	wg.Wait()
	return err
}

func (s *Server) serveGrpc(grpcServer *grpc.Server) error {
	listenInfo := net.JoinHostPort(s.opts.GrpcAddr, s.opts.GrpcPort)
	s.logger.Info("gRPC listen", zap.String("listenInfo", listenInfo), zap.String("server", "grpc"))
	l, err := net.Listen("tcp", listenInfo)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return grpcServer.Serve(l)
}

func (s *Server) listen(ctx context.Context) error {
	listenInfo := net.JoinHostPort(s.opts.ANCPAddr, s.opts.ANCPPort)
	s.logger.Info("ANCP listen", zap.String("listenInfo", listenInfo))

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", listenInfo)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	return s.acceptLoop(ctx, l)
}

func (s *Server) acceptLoop(ctx context.Context, l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept: %w", err)
		}
		ss, err := s.register(conn)
		if err != nil {
			s.logger.Info("Reject connection", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
			conn.Close()
			continue
		}
		go s.run(ctx, ss, false)
	}
}

// dialLoop keeps one session to the configured NAS, redialing after failures.
func (s *Server) dialLoop(ctx context.Context) error {
	target := net.JoinHostPort(s.opts.ANCPAddr, s.opts.ANCPPort)
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", target)
		if err == nil {
			ss, regErr := s.register(conn)
			if regErr != nil {
				conn.Close()
				return regErr
			}
			s.run(ctx, ss, true)
		} else {
			s.logger.Info("Failed to connect to NAS", zap.String("target", target), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(redialInterval):
		}
	}
}

func (s *Server) register(conn net.Conn) (*Session, error) {
	peer, err := netip.ParseAddrPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, err
	}
	peer = netip.AddrPortFrom(peer.Addr().Unmap(), peer.Port())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[peer]; ok {
		return nil, fmt.Errorf("session with %s already exists", peer)
	}
	ss := NewSession(s, peer, conn)
	s.sessions[peer] = ss
	return ss, nil
}

// run drives a session until it ends and removes it afterwards.
func (s *Server) run(ctx context.Context, ss *Session, initiate bool) {
	defer func() {
		wasEstablished := ss.IsEstablished()
		s.unregister(ss)
		if wasEstablished {
			s.deliver(ctx, ss.peer, nil)
		}
	}()

	if initiate {
		if err := ss.sendAdjacency(ancp.AdjacencySYN); err != nil {
			ss.logger.Info("Adjacency SYN send error", zap.Error(err))
			return
		}
	}
	ss.Run(ctx)
}

func (s *Server) unregister(ss *Session) {
	ss.Close()

	s.mu.Lock()
	delete(s.sessions, ss.peer)
	established := s.countEstablishedLocked()
	s.mu.Unlock()

	ss.logger.Info("Session closed")
	s.setServing(established > 0)
}

func (s *Server) closeSessions() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ss := range s.sessions {
		ss.Close()
	}
}

// deliver queues m for the dispatcher. It gives up when ctx is done.
func (s *Server) deliver(ctx context.Context, peer netip.AddrPort, m *ancp.Message) {
	select {
	case s.inbound <- inboundMessage{peer: peer, msg: m}:
	case <-ctx.Done():
	}
}

func (s *Server) dispatch(ctx context.Context, d Dispatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-s.inbound:
			if in.msg == nil {
				if h, ok := d.(PeerDownHandler); ok {
					h.PeerDown(in.peer)
				}
				continue
			}
			if err := d.Handle(in.peer, in.msg); err != nil {
				s.logger.Info("Failed to handle message",
					zap.String("session", in.peer.String()),
					zap.Stringer("messageType", in.msg.MessageType),
					zap.Error(err))
			}
		}
	}
}

func (s *Server) adjacencyChanged() {
	s.mu.RLock()
	established := s.countEstablishedLocked()
	s.mu.RUnlock()
	s.setServing(established > 0)
}

func (s *Server) countEstablishedLocked() int {
	n := 0
	for _, ss := range s.sessions {
		if ss.IsEstablished() {
			n++
		}
	}
	return n
}

func (s *Server) setServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

func (s *Server) IsEstablished(peer netip.AddrPort) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, ok := s.sessions[peer]
	return ok && ss.IsEstablished()
}

// ActivePeer returns the established peer with the lowest address.
func (s *Server) ActivePeer() (netip.AddrPort, bool) {
	peers := s.EstablishedPeers()
	if len(peers) == 0 {
		return netip.AddrPort{}, false
	}
	return peers[0], true
}

func (s *Server) EstablishedPeers() []netip.AddrPort {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var peers []netip.AddrPort
	for peer, ss := range s.sessions {
		if ss.IsEstablished() {
			peers = append(peers, peer)
		}
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Compare(peers[j]) < 0
	})
	return peers
}

func (s *Server) SendControlMessage(peer netip.AddrPort, data []byte) error {
	s.mu.RLock()
	ss, ok := s.sessions[peer]
	s.mu.RUnlock()
	if !ok || !ss.IsEstablished() {
		return fmt.Errorf("%w: %s", agent.ErrPeerNotFound, peer)
	}
	return ss.write(data)
}

// HealthServer exposes the health service so callers can register it on their own gRPC server.
func (s *Server) HealthServer() healthpb.HealthServer {
	return s.health
}

var errSessionClosed = errors.New("session closed")
