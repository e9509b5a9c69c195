// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import (
	"net/netip"

	"github.com/nttcom/ancp/pkg/packet/ancp"
	"go.uber.org/zap"
)

// AN is the access node side. It reports line events to the active NAS and
// applies the configuration the NAS sends back.
type AN struct {
	agent
	handler ANHandler
}

func NewAN(transport Transport, handler ANHandler, logger *zap.Logger) *AN {
	if handler == nil {
		handler = UnimplementedANHandler{}
	}
	return &AN{
		agent: agent{
			transport: transport,
			logger:    logger.With(zap.String("role", "an")),
		},
		handler: handler,
	}
}

// activePeer returns the NAS to send to. Without one, the send is dropped and logged.
func (a *AN) activePeer(msgType ancp.MessageType) (netip.AddrPort, bool) {
	peer, ok := a.transport.ActivePeer()
	if !ok {
		a.logger.Info("Drop outbound message", zap.Stringer("messageType", msgType), zap.Error(ErrNoActiveAdjacency))
	}
	return peer, ok
}

// SendPortUp reports a line in showtime with its actual rates.
func (a *AN) SendPortUp(circuitID string, tagMode uint8, upRate, downRate uint32) error {
	peer, ok := a.activePeer(ancp.MessageTypePortUp)
	if !ok {
		return nil
	}

	m := ancp.NewMessage(ancp.MessageTypePortUp)
	m.TLVs = append(m.TLVs,
		ancp.NewCircuitID(circuitID),
		ancp.NewDSLLineAttributes(upRate, downRate, tagMode, true),
	)
	return a.send(peer, m)
}

func (a *AN) SendPortDown(circuitID string) error {
	peer, ok := a.activePeer(ancp.MessageTypePortDown)
	if !ok {
		return nil
	}

	m := ancp.NewMessage(ancp.MessageTypePortDown)
	m.TLVs = append(m.TLVs, ancp.NewCircuitID(circuitID))
	return a.send(peer, m)
}

// SendMcastAdmissionControl asks the NAS to admit (CommandAdd) or release a group on a line.
func (a *AN) SendMcastAdmissionControl(circuitID string, code ancp.CommandCode, group netip.Addr) error {
	peer, ok := a.activePeer(ancp.MessageTypeMcastAdmissionControl)
	if !ok {
		return nil
	}

	var flow *ancp.McastFlow
	if group.IsValid() {
		flow = ancp.NewASMFlow(group)
	}
	m := ancp.NewMessage(ancp.MessageTypeMcastAdmissionControl)
	m.TLVs = append(m.TLVs,
		ancp.NewCircuitID(circuitID),
		ancp.NewCommand(code, flow),
	)
	return a.send(peer, m)
}

// Handle dispatches a message received from the NAS to at most one handler callback.
func (a *AN) Handle(peer netip.AddrPort, m *ancp.Message) error {
	logger := a.logger.With(zap.String("peer", peer.String()))

	switch m.MessageType {
	case ancp.MessageTypeAdjacency:
		return nil

	case ancp.MessageTypePortManagement:
		circuitID, ok := circuitIDOf(m)
		if !ok {
			return missingTLV(m, ancp.TLVAccessLoopCircuitID)
		}
		if p, ok := ancp.FindTLV[*ancp.ServiceProfileName](m); ok {
			logger.Info("Received line configuration", zap.String("circuitID", circuitID), zap.String("profile", p.Name))
			return a.handler.LineConfig(circuitID, p.Name)
		}
		if p, ok := ancp.FindTLV[*ancp.McastServiceProfileName](m); ok {
			logger.Info("Received multicast line configuration", zap.String("circuitID", circuitID), zap.String("profile", p.Name))
			return a.handler.McastLineConfig(circuitID, p.Name)
		}
		return missingTLV(m, ancp.TLVServiceProfileName)

	case ancp.MessageTypeProvisioning:
		sp, ok := ancp.FindTLV[*ancp.McastServiceProfile](m)
		if !ok {
			return missingTLV(m, ancp.TLVMulticastServiceProfile)
		}
		profile := McastProfile{
			Name:         sp.Name,
			WhiteList:    flowsOf(sp.WhiteList),
			GreyList:     flowsOf(sp.GreyList),
			BlackList:    flowsOf(sp.BlackList),
			WhiteListCAC: m.HasTLV(ancp.TLVWhiteListCAC),
			MRepCtlCAC:   m.HasTLV(ancp.TLVMRepCtlCAC),
		}
		logger.Info("Received multicast service profile", zap.Object("profile", profile))
		return a.handler.McastProfile(profile)

	case ancp.MessageTypeMcastReplicationControl:
		circuitID, ok := circuitIDOf(m)
		if !ok {
			return missingTLV(m, ancp.TLVAccessLoopCircuitID)
		}
		c, ok := ancp.FindTLV[*ancp.Command](m)
		if !ok {
			return missingTLV(m, ancp.TLVCommand)
		}
		logger.Info("Received multicast command", zap.String("circuitID", circuitID), zap.Object("command", c))
		return a.handler.McastCommand(circuitID, c.Code, groupOf(c))

	default:
		logger.Info("Ignore unhandled message", zap.Stringer("messageType", m.MessageType))
		return nil
	}
}
