// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"fmt"
	"net/netip"
	"sync"

	"github.com/nttcom/ancp/pkg/agent"
	"github.com/nttcom/ancp/pkg/packet/ancp"
)

type sentMessage struct {
	peer netip.AddrPort
	msg  *ancp.Message
}

// fakeTransport records every message it is asked to send, decoded.
type fakeTransport struct {
	mu     sync.Mutex
	active netip.AddrPort
	sent   []sentMessage
}

func newFakeTransport(active netip.AddrPort) *fakeTransport {
	return &fakeTransport{active: active}
}

func (f *fakeTransport) IsEstablished(peer netip.AddrPort) bool {
	return f.active.IsValid() && peer == f.active
}

func (f *fakeTransport) ActivePeer() (netip.AddrPort, bool) {
	return f.active, f.active.IsValid()
}

func (f *fakeTransport) SendControlMessage(peer netip.AddrPort, data []byte) error {
	if !f.IsEstablished(peer) {
		return fmt.Errorf("%w: %s", agent.ErrPeerNotFound, peer)
	}
	m, err := ancp.DecodeMessage(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{peer: peer, msg: m})
	return nil
}

// take returns the messages sent so far and forgets them.
func (f *fakeTransport) take() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	sent := f.sent
	f.sent = nil
	return sent
}
