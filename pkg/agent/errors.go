// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import "errors"

var (
	// ErrNoActiveAdjacency is logged by the AN agent when there is no NAS to send to.
	ErrNoActiveAdjacency = errors.New("agent: no active adjacency")
	// ErrPeerNotFound is returned by the NAS agent for a peer without an established adjacency.
	ErrPeerNotFound = errors.New("agent: peer not found")
	// ErrUnsupportedOperation is logged for multicast command codes that have no callback.
	ErrUnsupportedOperation = errors.New("agent: unsupported operation")
)
