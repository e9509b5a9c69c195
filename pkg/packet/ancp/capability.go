// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

type CapabilityType uint16

const (
	CapDynamicTopologyDiscovery        CapabilityType = 0x0001 // RFC6320
	CapLineConfiguration               CapabilityType = 0x0002 // RFC6320
	CapNASInitiatedReplication         CapabilityType = 0x0003 // RFC7256
	CapOAM                             CapabilityType = 0x0004 // RFC6320
	CapCommittedBandwidthReporting     CapabilityType = 0x0005 // RFC7256
	CapConditionalAccessWhiteBlackList CapabilityType = 0x0006 // RFC7256
	CapConditionalAccessGreyList       CapabilityType = 0x0007 // RFC7256
)

var capabilityNames = map[CapabilityType]string{
	CapDynamicTopologyDiscovery:        "Dynamic-Topology-Discovery",
	CapLineConfiguration:               "Line-Configuration",
	CapNASInitiatedReplication:         "NAS-Initiated-Replication",
	CapOAM:                             "OAM",
	CapCommittedBandwidthReporting:     "Committed-Bandwidth-Reporting",
	CapConditionalAccessWhiteBlackList: "Conditional-Access-White-Black-List",
	CapConditionalAccessGreyList:       "Conditional-Access-Grey-List",
}

func (c CapabilityType) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Capability (0x%04x)", uint16(c))
}

// CapabilityInterface is a TLV that may only appear in Adjacency messages.
type CapabilityInterface interface {
	TLVInterface
	CapabilityType() CapabilityType
}

// Capability is a capability TLV with optional capability data.
type Capability struct {
	CapType CapabilityType
	Data    []byte
}

func (c *Capability) DecodeFromBytes(data []byte) error {
	raw, consumed, err := DecodeRawTLV(data)
	if err != nil {
		return err
	}
	if consumed != len(data) {
		return fmt.Errorf("%w: %d trailing bytes after capability %s", ErrMalformedMessage, len(data)-consumed, CapabilityType(raw.Typ))
	}
	c.CapType = CapabilityType(raw.Typ)
	c.Data = raw.Value
	if len(c.Data) == 0 {
		c.Data = nil
	}
	return nil
}

func (c *Capability) Serialize() []byte {
	return serializeTLV(c.Type(), c.Data)
}

func (c *Capability) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("capability", c.CapType.String())
	if len(c.Data) > 0 {
		enc.AddBinary("data", c.Data)
	}
	return nil
}

func (c *Capability) Type() TLVType {
	return TLVType(c.CapType)
}

func (c *Capability) Len() uint16 {
	return paddedTLVLen(len(c.Data))
}

func (c *Capability) CapabilityType() CapabilityType {
	return c.CapType
}

func NewCapability(capType CapabilityType) *Capability {
	return &Capability{CapType: capType}
}

// DefaultCapabilities returns the capabilities advertised during adjacency bring-up.
func DefaultCapabilities() []CapabilityInterface {
	return []CapabilityInterface{
		NewCapability(CapDynamicTopologyDiscovery),
		NewCapability(CapLineConfiguration),
		NewCapability(CapNASInitiatedReplication),
		NewCapability(CapConditionalAccessWhiteBlackList),
	}
}

// DecodeCapabilities decodes exactly count capabilities from data and returns the bytes consumed.
func DecodeCapabilities(data []byte, count int) ([]CapabilityInterface, int, error) {
	caps := make([]CapabilityInterface, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		raw, consumed, err := DecodeRawTLV(data[offset:])
		if err != nil {
			return nil, 0, fmt.Errorf("capability %d of %d: %w", i+1, count, err)
		}
		c := &Capability{CapType: CapabilityType(raw.Typ)}
		if len(raw.Value) > 0 {
			c.Data = raw.Value
		}
		caps = append(caps, c)
		offset += consumed
	}
	return caps, offset, nil
}
