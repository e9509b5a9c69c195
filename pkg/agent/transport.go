// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import "net/netip"

// Transport owns the adjacencies. Agents only query it and hand it encoded messages.
type Transport interface {
	// IsEstablished reports whether peer has an established adjacency.
	IsEstablished(peer netip.AddrPort) bool
	// ActivePeer returns an established peer, if any.
	ActivePeer() (netip.AddrPort, bool)
	SendControlMessage(peer netip.AddrPort, data []byte) error
}
