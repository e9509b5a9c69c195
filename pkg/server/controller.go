// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package server

import (
	"net/netip"
)

// LineConfig is what the NAS pushes to a line when its AN reports it up.
type LineConfig struct {
	CircuitID    string
	Profile      string
	McastProfile string
}

// PortConfig is a line the AN reports once its adjacency is established.
type PortConfig struct {
	CircuitID string
	TagMode   uint8
	UpRate    uint32
	DownRate  uint32
	Joins     []netip.Addr
}
