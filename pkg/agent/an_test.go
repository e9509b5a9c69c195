// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/nttcom/ancp/pkg/packet/ancp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newTestAN(t *testing.T) (*AN, *MockTransport, *MockANHandler) {
	ctrl := gomock.NewController(t)
	transport := NewMockTransport(ctrl)
	handler := NewMockANHandler(ctrl)
	return NewAN(transport, handler, zap.NewNop()), transport, handler
}

func TestAN_SendWithoutAdjacency(t *testing.T) {
	tests := []struct {
		name string
		send func(a *AN) error
	}{
		{
			name: "Port-Up",
			send: func(a *AN) error { return a.SendPortUp("port0/0/1", 1, 10_000_000, 10_000_000) },
		},
		{
			name: "Port-Down",
			send: func(a *AN) error { return a.SendPortDown("port0/0/1") },
		},
		{
			name: "Multicast admission",
			send: func(a *AN) error {
				return a.SendMcastAdmissionControl("port0/0/1", ancp.CommandAdd, netip.MustParseAddr("224.0.0.1"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, transport, _ := newTestAN(t)
			transport.EXPECT().ActivePeer().Return(netip.AddrPort{}, false)
			transport.EXPECT().SendControlMessage(gomock.Any(), gomock.Any()).Times(0)

			assert.NoError(t, tt.send(a))
		})
	}
}

func TestAN_SendPortUp(t *testing.T) {
	a, transport, _ := newTestAN(t)
	transport.EXPECT().ActivePeer().Return(nasPeer, true)
	sent := expectSend(t, transport, nasPeer)

	require.NoError(t, a.SendPortUp("port0/0/1", 1, 10_000_000, 10_000_000))

	m := sent()
	assert.Equal(t, ancp.MessageTypePortUp, m.MessageType)
	assert.Equal(t, uint32(1), m.TransactionID)
	assert.Equal(t, []ancp.TLVInterface{
		ancp.NewCircuitID("port0/0/1"),
		&ancp.DSLLineAttributes{
			DSLType:        ancp.DSLTypeVDSL2,
			UpstreamRate:   10_000_000,
			DownstreamRate: 10_000_000,
			LineState:      ancp.DSLLineStateShowtime,
			DataLink:       ancp.DataLinkEthernet,
			TagMode:        1,
		},
	}, m.TLVs)
}

func TestAN_SendPortDown(t *testing.T) {
	a, transport, _ := newTestAN(t)
	transport.EXPECT().ActivePeer().Return(nasPeer, true)
	sent := expectSend(t, transport, nasPeer)

	require.NoError(t, a.SendPortDown("port0/0/1"))

	m := sent()
	assert.Equal(t, ancp.MessageTypePortDown, m.MessageType)
	assert.Equal(t, []ancp.TLVInterface{ancp.NewCircuitID("port0/0/1")}, m.TLVs)
}

func TestAN_SendMcastAdmissionControl(t *testing.T) {
	group := netip.MustParseAddr("224.0.0.1")
	a, transport, _ := newTestAN(t)
	transport.EXPECT().ActivePeer().Return(nasPeer, true)
	sent := expectSend(t, transport, nasPeer)

	require.NoError(t, a.SendMcastAdmissionControl("port0/0/1", ancp.CommandAdd, group))

	m := sent()
	assert.Equal(t, ancp.MessageTypeMcastAdmissionControl, m.MessageType)
	assert.Equal(t, ancp.ResultIgnore, m.ResponseMode)
	assert.Equal(t, []ancp.TLVInterface{
		ancp.NewCircuitID("port0/0/1"),
		ancp.NewCommand(ancp.CommandAdd, ancp.NewASMFlow(group)),
	}, m.TLVs)
}

func TestAN_SendMcastAdmissionControlDeleteAll(t *testing.T) {
	a, transport, _ := newTestAN(t)
	transport.EXPECT().ActivePeer().Return(nasPeer, true)
	sent := expectSend(t, transport, nasPeer)

	require.NoError(t, a.SendMcastAdmissionControl("port0/0/1", ancp.CommandDeleteAll, netip.Addr{}))

	m := sent()
	cmd, ok := ancp.FindTLV[*ancp.Command](m)
	require.True(t, ok)
	assert.Equal(t, ancp.CommandDeleteAll, cmd.Code)
	assert.Nil(t, cmd.Flow)
}

func TestAN_SendError(t *testing.T) {
	a, transport, _ := newTestAN(t)
	errClosed := errors.New("connection closed")
	transport.EXPECT().ActivePeer().Return(nasPeer, true)
	transport.EXPECT().SendControlMessage(nasPeer, gomock.Any()).Return(errClosed)

	assert.ErrorIs(t, a.SendPortDown("port0/0/1"), errClosed)
}

func TestAN_HandlePortManagement(t *testing.T) {
	tests := []struct {
		name   string
		tlvs   []ancp.TLVInterface
		expect func(h *MockANHandlerMockRecorder)
		err    error
	}{
		{
			name: "Service profile",
			tlvs: []ancp.TLVInterface{ancp.NewCircuitID("c1"), ancp.NewServiceProfileName("p1")},
			expect: func(h *MockANHandlerMockRecorder) {
				h.LineConfig("c1", "p1").Return(nil).Times(1)
			},
		},
		{
			name: "Multicast service profile",
			tlvs: []ancp.TLVInterface{ancp.NewCircuitID("c1"), ancp.NewMcastServiceProfileName("TopHD")},
			expect: func(h *MockANHandlerMockRecorder) {
				h.McastLineConfig("c1", "TopHD").Return(nil).Times(1)
			},
		},
		{
			name: "Service profile wins over multicast service profile",
			tlvs: []ancp.TLVInterface{ancp.NewCircuitID("c1"), ancp.NewMcastServiceProfileName("TopHD"), ancp.NewServiceProfileName("p1")},
			expect: func(h *MockANHandlerMockRecorder) {
				h.LineConfig("c1", "p1").Return(nil).Times(1)
			},
		},
		{
			name:   "Missing circuit id",
			tlvs:   []ancp.TLVInterface{ancp.NewServiceProfileName("p1")},
			expect: func(*MockANHandlerMockRecorder) {},
			err:    ancp.ErrMalformedMessage,
		},
		{
			name:   "Missing profile",
			tlvs:   []ancp.TLVInterface{ancp.NewCircuitID("c1")},
			expect: func(*MockANHandlerMockRecorder) {},
			err:    ancp.ErrMalformedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, handler := newTestAN(t)
			tt.expect(handler.EXPECT())

			err := a.Handle(nasPeer, newMessage(t, ancp.MessageTypePortManagement, tt.tlvs...))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAN_HandleProvisioning(t *testing.T) {
	sp, err := ancp.NewMcastServiceProfile("TopHD", addrs("224.0.0.1"), nil, addrs("224.0.0.3"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		tlvs     []ancp.TLVInterface
		expected McastProfile
	}{
		{
			name: "Without CAC markers",
			tlvs: []ancp.TLVInterface{sp},
			expected: McastProfile{
				Name:      "TopHD",
				WhiteList: addrs("224.0.0.1"),
				BlackList: addrs("224.0.0.3"),
			},
		},
		{
			name: "With both CAC markers",
			tlvs: []ancp.TLVInterface{sp, &ancp.WhiteListCAC{}, &ancp.MRepCtlCAC{}},
			expected: McastProfile{
				Name:         "TopHD",
				WhiteList:    addrs("224.0.0.1"),
				BlackList:    addrs("224.0.0.3"),
				WhiteListCAC: true,
				MRepCtlCAC:   true,
			},
		},
		{
			name: "Replication CAC only",
			tlvs: []ancp.TLVInterface{&ancp.MRepCtlCAC{}, sp},
			expected: McastProfile{
				Name:       "TopHD",
				WhiteList:  addrs("224.0.0.1"),
				BlackList:  addrs("224.0.0.3"),
				MRepCtlCAC: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, handler := newTestAN(t)
			handler.EXPECT().McastProfile(tt.expected).Return(nil).Times(1)

			assert.NoError(t, a.Handle(nasPeer, newMessage(t, ancp.MessageTypeProvisioning, tt.tlvs...)))
		})
	}

	t.Run("Missing profile", func(t *testing.T) {
		a, _, _ := newTestAN(t)
		err := a.Handle(nasPeer, newMessage(t, ancp.MessageTypeProvisioning, &ancp.WhiteListCAC{}))
		assert.ErrorIs(t, err, ancp.ErrMalformedMessage)
	})
}

func TestAN_HandleMcastReplicationControl(t *testing.T) {
	group := netip.MustParseAddr("224.0.0.1")

	t.Run("Add", func(t *testing.T) {
		a, _, handler := newTestAN(t)
		handler.EXPECT().McastCommand("c1", ancp.CommandAdd, group).Return(nil).Times(1)

		m := newMessage(t, ancp.MessageTypeMcastReplicationControl, ancp.NewCircuitID("c1"), ancp.NewCommand(ancp.CommandAdd, ancp.NewASMFlow(group)))
		assert.NoError(t, a.Handle(nasPeer, m))
	})

	t.Run("Delete-All without flow", func(t *testing.T) {
		a, _, handler := newTestAN(t)
		handler.EXPECT().McastCommand("c1", ancp.CommandDeleteAll, netip.Addr{}).Return(nil).Times(1)

		m := newMessage(t, ancp.MessageTypeMcastReplicationControl, ancp.NewCircuitID("c1"), ancp.NewCommand(ancp.CommandDeleteAll, nil))
		assert.NoError(t, a.Handle(nasPeer, m))
	})

	t.Run("Missing command", func(t *testing.T) {
		a, _, _ := newTestAN(t)
		m := newMessage(t, ancp.MessageTypeMcastReplicationControl, ancp.NewCircuitID("c1"))
		assert.ErrorIs(t, a.Handle(nasPeer, m), ancp.ErrMalformedMessage)
	})

	t.Run("Missing circuit id", func(t *testing.T) {
		a, _, _ := newTestAN(t)
		m := newMessage(t, ancp.MessageTypeMcastReplicationControl, ancp.NewCommand(ancp.CommandAdd, ancp.NewASMFlow(group)))
		assert.ErrorIs(t, a.Handle(nasPeer, m), ancp.ErrMalformedMessage)
	})
}

func TestAN_HandleIgnored(t *testing.T) {
	a, _, _ := newTestAN(t)

	assert.NoError(t, a.Handle(nasPeer, ancp.NewMessage(ancp.MessageTypeAdjacency)))
	assert.NoError(t, a.Handle(nasPeer, newMessage(t, ancp.MessageTypePortUp, ancp.NewCircuitID("c1"))))
	assert.NoError(t, a.Handle(nasPeer, ancp.NewMessage(ancp.MessageTypeGenericResponse)))
}

func TestAN_HandleWithoutHandler(t *testing.T) {
	a := NewAN(NewMockTransport(gomock.NewController(t)), nil, zap.NewNop())
	m := newMessage(t, ancp.MessageTypePortManagement, ancp.NewCircuitID("c1"), ancp.NewServiceProfileName("p1"))
	assert.NoError(t, a.Handle(nasPeer, m))
}

func TestAN_HandlerError(t *testing.T) {
	a, _, handler := newTestAN(t)
	errRejected := errors.New("rejected")
	handler.EXPECT().LineConfig("c1", "p1").Return(errRejected)

	m := newMessage(t, ancp.MessageTypePortManagement, ancp.NewCircuitID("c1"), ancp.NewServiceProfileName("p1"))
	assert.ErrorIs(t, a.Handle(nasPeer, m), errRejected)
}
