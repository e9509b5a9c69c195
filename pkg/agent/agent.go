// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import (
	"fmt"
	"net/netip"
	"sync/atomic"

	"github.com/nttcom/ancp/pkg/packet/ancp"
	"go.uber.org/zap"
)

// agent holds what the AN and NAS roles share: the transport and the transaction id counter.
type agent struct {
	transport     Transport
	logger        *zap.Logger
	transactionID atomic.Uint32
}

// nextTransactionID returns the next 24-bit transaction id. 0 is skipped.
func (a *agent) nextTransactionID() uint32 {
	for {
		if id := a.transactionID.Add(1) & ancp.MaxTransactionID; id != 0 {
			return id
		}
	}
}

func (a *agent) send(peer netip.AddrPort, m *ancp.Message) error {
	m.TransactionID = a.nextTransactionID()
	data, err := m.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", m.MessageType, err)
	}
	if err := a.transport.SendControlMessage(peer, data); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", m.MessageType, peer, err)
	}
	a.logger.Debug("Send ANCP message", zap.String("peer", peer.String()), zap.Object("message", m))
	return nil
}

func circuitIDOf(m *ancp.Message) (string, bool) {
	if c, ok := ancp.FindTLV[*ancp.CircuitID](m); ok {
		return c.ID, true
	}
	return "", false
}

func missingTLV(m *ancp.Message, typ ancp.TLVType) error {
	return fmt.Errorf("%w: %s message without %s", ancp.ErrMalformedMessage, m.MessageType, typ)
}

func flowsOf(l *ancp.ListAction) []netip.Addr {
	if l == nil {
		return nil
	}
	return l.Flows
}

func groupOf(c *ancp.Command) netip.Addr {
	if c.Flow == nil {
		return netip.Addr{}
	}
	return c.Flow.Group
}
