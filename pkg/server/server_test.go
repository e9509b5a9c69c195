// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"context"
	"net"
	"net/netip"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nttcom/ancp/internal/pkg/table"
	"github.com/nttcom/ancp/pkg/agent"
)

func healthStatus(t *testing.T, s *Server) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.HealthServer().Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_NASAndAN(t *testing.T) {
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	nasSrv := NewServer(&Options{Role: RoleNAS, Name: nasName, Keepalive: time.Second}, logger)
	nasCtl := NewNASController(nasSrv,
		[]LineConfig{{CircuitID: "port0/0/1", Profile: "gold", McastProfile: "TopHD"}},
		[]agent.McastProfile{{Name: "TopHD", WhiteList: []netip.Addr{whiteGroup}}},
		logger)
	go nasSrv.dispatch(ctx, nasCtl)
	go nasSrv.acceptLoop(ctx, l)

	anCtx, anCancel := context.WithCancel(ctx)
	defer anCancel()
	anSrv := NewServer(&Options{Role: RoleAN, Name: anName, Keepalive: time.Second}, logger)
	anCtl := NewANController(anSrv,
		[]PortConfig{{CircuitID: "port0/0/1", UpRate: 1_000, DownRate: 2_000, Joins: []netip.Addr{whiteGroup, otherGroup}}},
		logger)
	go anSrv.dispatch(anCtx, anCtl)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, nasSrv))

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	ss, err := anSrv.register(conn)
	require.NoError(t, err)
	go anSrv.run(anCtx, ss, true)

	require.Eventually(t, func() bool {
		return slices.Equal(anCtl.Groups("port0/0/1"), []netip.Addr{whiteGroup})
	}, 5*time.Second, 10*time.Millisecond)

	profile, ok := anCtl.LineProfile("port0/0/1")
	require.True(t, ok)
	assert.Equal(t, "gold", profile)

	mcast, ok := anCtl.LineMcastProfile("port0/0/1")
	require.True(t, ok)
	assert.Equal(t, "TopHD", mcast.Name)
	assert.Equal(t, []netip.Addr{whiteGroup}, mcast.WhiteList)

	lines := nasCtl.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, netip.MustParseAddrPort(conn.LocalAddr().String()), lines[0].Peer)
	assert.Equal(t, table.LineStateUp, lines[0].State)
	assert.Equal(t, []netip.Addr{whiteGroup}, lines[0].Groups)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, nasSrv))
	assert.Len(t, nasSrv.EstablishedPeers(), 1)

	anCancel()

	require.Eventually(t, func() bool {
		return len(nasCtl.Lines()) == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, nasSrv))
	assert.Empty(t, nasSrv.EstablishedPeers())
}

func TestServer_ServeUnknownRole(t *testing.T) {
	s := NewServer(&Options{Role: "bng"}, zap.NewNop())
	assert.ErrorContains(t, s.Serve(context.Background(), agent.NewNAS(s, nil, zap.NewNop())), "unknown role")
}
