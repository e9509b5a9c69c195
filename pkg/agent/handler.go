// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package agent

import (
	"net/netip"

	"github.com/nttcom/ancp/pkg/packet/ancp"
	"go.uber.org/zap/zapcore"
)

// McastProfile is the content of a multicast service profile provisioned on an AN.
type McastProfile struct {
	Name         string
	WhiteList    []netip.Addr
	GreyList     []netip.Addr
	BlackList    []netip.Addr
	WhiteListCAC bool
	MRepCtlCAC   bool
}

func (p McastProfile) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", p.Name)
	enc.AddInt("whiteList", len(p.WhiteList))
	enc.AddInt("greyList", len(p.GreyList))
	enc.AddInt("blackList", len(p.BlackList))
	enc.AddBool("whiteListCAC", p.WhiteListCAC)
	enc.AddBool("mrepctlCAC", p.MRepCtlCAC)
	return nil
}

// ANHandler receives the requests a NAS sends to an AN.
// Implementations should embed UnimplementedANHandler for callbacks they do not need.
type ANHandler interface {
	LineConfig(circuitID, profileName string) error
	McastLineConfig(circuitID, profileName string) error
	McastProfile(profile McastProfile) error
	McastCommand(circuitID string, code ancp.CommandCode, group netip.Addr) error
}

// NASHandler receives the events an AN reports to a NAS.
// Implementations should embed UnimplementedNASHandler for callbacks they do not need.
type NASHandler interface {
	NewAdjacency(peer netip.AddrPort) error
	PortUp(peer netip.AddrPort, circuitID string, upRate, downRate uint32, tagMode uint8) error
	PortDown(peer netip.AddrPort, circuitID string) error
	Admission(peer netip.AddrPort, circuitID string, group netip.Addr, join bool) error
}

// UnimplementedANHandler accepts every request and does nothing.
type UnimplementedANHandler struct{}

func (UnimplementedANHandler) LineConfig(string, string) error {
	return nil
}

func (UnimplementedANHandler) McastLineConfig(string, string) error {
	return nil
}

func (UnimplementedANHandler) McastProfile(McastProfile) error {
	return nil
}

func (UnimplementedANHandler) McastCommand(string, ancp.CommandCode, netip.Addr) error {
	return nil
}

// UnimplementedNASHandler accepts every event and does nothing.
type UnimplementedNASHandler struct{}

func (UnimplementedNASHandler) NewAdjacency(netip.AddrPort) error {
	return nil
}

func (UnimplementedNASHandler) PortUp(netip.AddrPort, string, uint32, uint32, uint8) error {
	return nil
}

func (UnimplementedNASHandler) PortDown(netip.AddrPort, string) error {
	return nil
}

func (UnimplementedNASHandler) Admission(netip.AddrPort, string, netip.Addr, bool) error {
	return nil
}
