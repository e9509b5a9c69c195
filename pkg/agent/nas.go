// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import (
	"fmt"
	"net/netip"

	"github.com/nttcom/ancp/pkg/packet/ancp"
	"go.uber.org/zap"
)

// NAS is the network access server side. It configures lines and multicast on the ANs
// it has adjacencies with and receives their line and admission events.
type NAS struct {
	agent
	handler NASHandler
}

func NewNAS(transport Transport, handler NASHandler, logger *zap.Logger) *NAS {
	if handler == nil {
		handler = UnimplementedNASHandler{}
	}
	return &NAS{
		agent: agent{
			transport: transport,
			logger:    logger.With(zap.String("role", "nas")),
		},
		handler: handler,
	}
}

func (n *NAS) sendTo(peer netip.AddrPort, m *ancp.Message) error {
	if !n.transport.IsEstablished(peer) {
		return fmt.Errorf("%w: %s", ErrPeerNotFound, peer)
	}
	return n.send(peer, m)
}

// SendPortConfigCommand assigns a service profile to a line.
func (n *NAS) SendPortConfigCommand(peer netip.AddrPort, circuitID, profileName string) error {
	m := ancp.NewMessage(ancp.MessageTypePortManagement)
	m.TLVs = append(m.TLVs, ancp.NewCircuitID(circuitID), ancp.NewServiceProfileName(profileName))
	return n.sendTo(peer, m)
}

// SendMcastPortConfigCommand assigns a multicast service profile to a line.
func (n *NAS) SendMcastPortConfigCommand(peer netip.AddrPort, circuitID, profileName string) error {
	m := ancp.NewMessage(ancp.MessageTypePortManagement)
	m.TLVs = append(m.TLVs, ancp.NewCircuitID(circuitID), ancp.NewMcastServiceProfileName(profileName))
	return n.sendTo(peer, m)
}

// SendMcastServiceProfile provisions a multicast service profile on the AN.
func (n *NAS) SendMcastServiceProfile(peer netip.AddrPort, profile McastProfile) error {
	sp, err := ancp.NewMcastServiceProfile(profile.Name, profile.WhiteList, profile.GreyList, profile.BlackList)
	if err != nil {
		return fmt.Errorf("invalid multicast service profile %q: %w", profile.Name, err)
	}

	m := ancp.NewMessage(ancp.MessageTypeProvisioning)
	m.TLVs = append(m.TLVs, sp)
	if profile.WhiteListCAC {
		m.TLVs = append(m.TLVs, &ancp.WhiteListCAC{})
	}
	if profile.MRepCtlCAC {
		m.TLVs = append(m.TLVs, &ancp.MRepCtlCAC{})
	}
	return n.sendTo(peer, m)
}

// SendMcastCommand tells the AN to start or stop replicating group on a line.
// An invalid group sends the command without a flow, as used by CommandDeleteAll.
func (n *NAS) SendMcastCommand(peer netip.AddrPort, circuitID string, code ancp.CommandCode, group netip.Addr) error {
	var flow *ancp.McastFlow
	if group.IsValid() {
		flow = ancp.NewASMFlow(group)
	}

	m := ancp.NewMessage(ancp.MessageTypeMcastReplicationControl)
	m.TLVs = append(m.TLVs, ancp.NewCircuitID(circuitID), ancp.NewCommand(code, flow))
	return n.sendTo(peer, m)
}

// Handle dispatches a message received from an AN to at most one handler callback.
func (n *NAS) Handle(peer netip.AddrPort, m *ancp.Message) error {
	logger := n.logger.With(zap.String("peer", peer.String()))

	switch m.MessageType {
	case ancp.MessageTypeAdjacency:
		logger.Info("New adjacency", zap.Object("message", m))
		return n.handler.NewAdjacency(peer)

	case ancp.MessageTypePortUp:
		attrs, ok := ancp.FindTLV[*ancp.DSLLineAttributes](m)
		if !ok {
			return missingTLV(m, ancp.TLVDSLLineAttributes)
		}
		circuitID, _ := circuitIDOf(m)
		logger.Info("Port up", zap.String("circuitID", circuitID), zap.Object("attributes", attrs))
		return n.handler.PortUp(peer, circuitID, attrs.UpstreamRate, attrs.DownstreamRate, attrs.TagMode)

	case ancp.MessageTypePortDown:
		circuitID, _ := circuitIDOf(m)
		logger.Info("Port down", zap.String("circuitID", circuitID))
		return n.handler.PortDown(peer, circuitID)

	case ancp.MessageTypeMcastAdmissionControl:
		c, ok := ancp.FindTLV[*ancp.Command](m)
		if !ok {
			return missingTLV(m, ancp.TLVCommand)
		}
		circuitID, _ := circuitIDOf(m)

		var join bool
		switch c.Code {
		case ancp.CommandAdd:
			join = true
		case ancp.CommandDelete, ancp.CommandDeleteAll:
			join = false
		default:
			logger.Info("Ignore admission request", zap.String("circuitID", circuitID), zap.Stringer("command", c.Code), zap.Error(ErrUnsupportedOperation))
			return nil
		}
		logger.Info("Admission request", zap.String("circuitID", circuitID), zap.Object("command", c))
		return n.handler.Admission(peer, circuitID, groupOf(c), join)

	default:
		logger.Debug("Ignore unhandled message", zap.Stringer("messageType", m.MessageType))
		return nil
	}
}
