// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap/zapcore"
)

type TLVType uint16

// ANCP TLV types
const (
	TLVAccessLoopCircuitID         TLVType = 0x0001
	TLVAccessLoopRemoteID          TLVType = 0x0002
	TLVAccessAggregationCircuitID  TLVType = 0x0003
	TLVDSLLineAttributes           TLVType = 0x0004
	TLVServiceProfileName          TLVType = 0x0005
	TLVOpaqueData                  TLVType = 0x0008
	TLVCommand                     TLVType = 0x0011
	TLVMulticastServiceProfile     TLVType = 0x0013
	TLVBandwidthAllocation         TLVType = 0x0015
	TLVBandwidthRequest            TLVType = 0x0016
	TLVMulticastServiceProfileName TLVType = 0x0018
	TLVMulticastFlow               TLVType = 0x0019
	TLVListAction                  TLVType = 0x0021
	TLVSequenceNumber              TLVType = 0x0022
	TLVWhiteListCAC                TLVType = 0x0024
	TLVMRepCtlCAC                  TLVType = 0x0025
)

// DSL-Line-Attributes sub-TLV types
const (
	SubTLVActualNetDataRateUpstream   TLVType = 0x0081
	SubTLVActualNetDataRateDownstream TLVType = 0x0082
	SubTLVDSLLineState                TLVType = 0x008f
	SubTLVAccessLoopEncapsulation     TLVType = 0x0090
	SubTLVDSLType                     TLVType = 0x0091
)

var tlvDescriptions = map[TLVType]struct {
	Description string
	Reference   string
}{
	TLVAccessLoopCircuitID:            {"ACCESS-LOOP-CIRCUIT-ID", "RFC6320"},
	TLVAccessLoopRemoteID:             {"ACCESS-LOOP-REMOTE-ID", "RFC6320"},
	TLVAccessAggregationCircuitID:     {"ACCESS-AGGREGATION-CIRCUIT-ID-ASCII", "RFC6320"},
	TLVDSLLineAttributes:              {"DSL-LINE-ATTRIBUTES", "RFC6320"},
	TLVServiceProfileName:             {"SERVICE-PROFILE-NAME", "RFC6320"},
	TLVOpaqueData:                     {"OPAQUE-DATA", "RFC6320"},
	TLVCommand:                        {"COMMAND", "RFC7256"},
	TLVMulticastServiceProfile:        {"MULTICAST-SERVICE-PROFILE", "RFC7256"},
	TLVBandwidthAllocation:            {"BANDWIDTH-ALLOCATION", "RFC7256"},
	TLVBandwidthRequest:               {"BANDWIDTH-REQUEST", "RFC7256"},
	TLVMulticastServiceProfileName:    {"MULTICAST-SERVICE-PROFILE-NAME", "RFC7256"},
	TLVMulticastFlow:                  {"MULTICAST-FLOW", "RFC7256"},
	TLVListAction:                     {"LIST-ACTION", "RFC7256"},
	TLVSequenceNumber:                 {"SEQUENCE-NUMBER", "RFC7256"},
	TLVWhiteListCAC:                   {"WHITE-LIST-CAC", "RFC7256"},
	TLVMRepCtlCAC:                     {"MREPCTL-CAC", "RFC7256"},
	SubTLVActualNetDataRateUpstream:   {"ACTUAL-NET-DATA-RATE-UPSTREAM", "RFC6320"},
	SubTLVActualNetDataRateDownstream: {"ACTUAL-NET-DATA-RATE-DOWNSTREAM", "RFC6320"},
	SubTLVDSLLineState:                {"DSL-LINE-STATE", "RFC6320"},
	SubTLVAccessLoopEncapsulation:     {"ACCESS-LOOP-ENCAPSULATION", "RFC6320"},
	SubTLVDSLType:                     {"DSL-TYPE", "RFC6320"},
}

func (t TLVType) String() string {
	if desc, ok := tlvDescriptions[t]; ok {
		return fmt.Sprintf("%s (%s)", desc.Description, desc.Reference)
	}
	return fmt.Sprintf("Unknown TLV (0x%04x)", uint16(t))
}

// TLV header length (type + length)
const TLVHeaderLength = 4

// TLV value lengths, excluding the 4-byte TLV header (type + length)
const (
	TLVDSLLineAttributesValueLength uint16 = 40
	TLVMulticastFlowFixedLength     uint16 = 4
	TLVListActionFixedLength        uint16 = 4
	TLVCommandFixedLength           uint16 = 4
)

type TLVInterface interface {
	DecodeFromBytes(data []byte) error // data holds the TLV header and value, without padding
	Serialize() []byte                 // includes trailing padding
	MarshalLogObject(enc zapcore.ObjectEncoder) error
	Type() TLVType
	Len() uint16 // Total length of Type, Length, Value and padding
}

var tlvMap = map[TLVType]func() TLVInterface{
	TLVAccessLoopCircuitID:         func() TLVInterface { return &CircuitID{} },
	TLVDSLLineAttributes:           func() TLVInterface { return &DSLLineAttributes{} },
	TLVServiceProfileName:          func() TLVInterface { return &ServiceProfileName{} },
	TLVCommand:                     func() TLVInterface { return &Command{} },
	TLVMulticastServiceProfile:     func() TLVInterface { return &McastServiceProfile{} },
	TLVMulticastServiceProfileName: func() TLVInterface { return &McastServiceProfileName{} },
	TLVMulticastFlow:               func() TLVInterface { return &McastFlow{} },
	TLVListAction:                  func() TLVInterface { return &ListAction{} },
	TLVWhiteListCAC:                func() TLVInterface { return &WhiteListCAC{} },
	TLVMRepCtlCAC:                  func() TLVInterface { return &MRepCtlCAC{} },
}

func serializeTLV(typ TLVType, value []byte) []byte {
	return AppendByteSlices(
		Uint16ToByteSlice(typ),
		Uint16ToByteSlice(uint16(len(value))),
		value,
		make([]byte, Padding(len(value))),
	)
}

func paddedTLVLen(valueLen int) uint16 {
	return uint16(TLVHeaderLength + valueLen + Padding(valueLen))
}

// tlvValue checks the header of a single TLV against the expected type and returns its value.
func tlvValue(data []byte, typ TLVType) ([]byte, error) {
	if len(data) < TLVHeaderLength {
		return nil, fmt.Errorf("%w: data is too short: expected at least %d bytes, but got %d bytes for %s", ErrMalformedMessage, TLVHeaderLength, len(data), typ)
	}
	if t := TLVType(binary.BigEndian.Uint16(data[0:2])); t != typ {
		return nil, fmt.Errorf("%w: unexpected TLV %s while decoding %s", ErrMalformedMessage, t, typ)
	}
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if len(data) != TLVHeaderLength+length {
		return nil, fmt.Errorf("%w: data length mismatch: expected %d bytes, but got %d bytes for %s", ErrMalformedMessage, TLVHeaderLength+length, len(data), typ)
	}
	return data[TLVHeaderLength:], nil
}

func decodeString(data []byte, typ TLVType) (string, error) {
	value, err := tlvValue(data, typ)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(value) {
		return "", fmt.Errorf("%w: invalid UTF-8 sequence in %s", ErrMalformedMessage, typ)
	}
	return string(value), nil
}

type CircuitID struct {
	ID string
}

func (tlv *CircuitID) DecodeFromBytes(data []byte) error {
	var err error
	tlv.ID, err = decodeString(data, TLVAccessLoopCircuitID)
	return err
}

func (tlv *CircuitID) Serialize() []byte {
	return serializeTLV(tlv.Type(), []byte(tlv.ID))
}

func (tlv *CircuitID) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("circuitID", tlv.ID)
	return nil
}

func (tlv *CircuitID) Type() TLVType {
	return TLVAccessLoopCircuitID
}

func (tlv *CircuitID) Len() uint16 {
	return paddedTLVLen(len(tlv.ID))
}

func NewCircuitID(id string) *CircuitID {
	return &CircuitID{ID: id}
}

type ServiceProfileName struct {
	Name string
}

func (tlv *ServiceProfileName) DecodeFromBytes(data []byte) error {
	var err error
	tlv.Name, err = decodeString(data, TLVServiceProfileName)
	return err
}

func (tlv *ServiceProfileName) Serialize() []byte {
	return serializeTLV(tlv.Type(), []byte(tlv.Name))
}

func (tlv *ServiceProfileName) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("serviceProfileName", tlv.Name)
	return nil
}

func (tlv *ServiceProfileName) Type() TLVType {
	return TLVServiceProfileName
}

func (tlv *ServiceProfileName) Len() uint16 {
	return paddedTLVLen(len(tlv.Name))
}

func NewServiceProfileName(name string) *ServiceProfileName {
	return &ServiceProfileName{Name: name}
}

type McastServiceProfileName struct {
	Name string
}

func (tlv *McastServiceProfileName) DecodeFromBytes(data []byte) error {
	var err error
	tlv.Name, err = decodeString(data, TLVMulticastServiceProfileName)
	return err
}

func (tlv *McastServiceProfileName) Serialize() []byte {
	return serializeTLV(tlv.Type(), []byte(tlv.Name))
}

func (tlv *McastServiceProfileName) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("mcastServiceProfileName", tlv.Name)
	return nil
}

func (tlv *McastServiceProfileName) Type() TLVType {
	return TLVMulticastServiceProfileName
}

func (tlv *McastServiceProfileName) Len() uint16 {
	return paddedTLVLen(len(tlv.Name))
}

func NewMcastServiceProfileName(name string) *McastServiceProfileName {
	return &McastServiceProfileName{Name: name}
}

// WhiteListCAC carries no value; its presence enables admission control on the white list.
type WhiteListCAC struct{}

func (tlv *WhiteListCAC) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVWhiteListCAC)
	if err != nil {
		return err
	}
	if len(value) != 0 {
		return fmt.Errorf("%w: %s carries %d value bytes", ErrMalformedMessage, tlv.Type(), len(value))
	}
	return nil
}

func (tlv *WhiteListCAC) Serialize() []byte {
	return serializeTLV(tlv.Type(), nil)
}

func (tlv *WhiteListCAC) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("whiteListCAC", true)
	return nil
}

func (tlv *WhiteListCAC) Type() TLVType {
	return TLVWhiteListCAC
}

func (tlv *WhiteListCAC) Len() uint16 {
	return TLVHeaderLength
}

// MRepCtlCAC carries no value; its presence enables admission control for replication commands.
type MRepCtlCAC struct{}

func (tlv *MRepCtlCAC) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVMRepCtlCAC)
	if err != nil {
		return err
	}
	if len(value) != 0 {
		return fmt.Errorf("%w: %s carries %d value bytes", ErrMalformedMessage, tlv.Type(), len(value))
	}
	return nil
}

func (tlv *MRepCtlCAC) Serialize() []byte {
	return serializeTLV(tlv.Type(), nil)
}

func (tlv *MRepCtlCAC) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("mrepctlCAC", true)
	return nil
}

func (tlv *MRepCtlCAC) Type() TLVType {
	return TLVMRepCtlCAC
}

func (tlv *MRepCtlCAC) Len() uint16 {
	return TLVHeaderLength
}

type DSLType uint32

const (
	DSLTypeADSL1     DSLType = 0x01
	DSLTypeADSL2     DSLType = 0x02
	DSLTypeADSL2Plus DSLType = 0x03
	DSLTypeVDSL1     DSLType = 0x04
	DSLTypeVDSL2     DSLType = 0x05
	DSLTypeSDSL      DSLType = 0x06
)

type DSLLineState uint32

const (
	DSLLineStateShowtime DSLLineState = 0x01
	DSLLineStateIdle     DSLLineState = 0x02
	DSLLineStateSilent   DSLLineState = 0x03
)

// Access-Loop-Encapsulation data link
const (
	DataLinkATMAAL5  uint8 = 0x00
	DataLinkEthernet uint8 = 0x01
)

// Access-Loop-Encapsulation encaps-1 (tag mode)
const (
	TagModeNotAvailable         uint8 = 0x00
	TagModeUntaggedEthernet     uint8 = 0x01
	TagModeSingleTaggedEthernet uint8 = 0x02
)

const (
	accessLoopEncapsulationValueLength = 3
	dslSubTLVValueLength               = 4
)

// DSLLineAttributes is a fixed sequence of five sub-TLVs. Every sub-field is kept so that a decoded
// TLV serializes to the same bytes.
type DSLLineAttributes struct {
	DSLType        DSLType
	UpstreamRate   uint32 // bit/s
	DownstreamRate uint32 // bit/s
	LineState      DSLLineState
	DataLink       uint8
	TagMode        uint8
	Encaps2        uint8
}

func (tlv *DSLLineAttributes) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVDSLLineAttributes)
	if err != nil {
		return err
	}

	for len(value) > 0 {
		sub, consumed, err := DecodeRawTLV(value)
		if err != nil {
			return err
		}
		if sub.Typ != SubTLVAccessLoopEncapsulation && len(sub.Value) != dslSubTLVValueLength {
			return fmt.Errorf("%w: %s carries %d value bytes", ErrMalformedMessage, sub.Typ, len(sub.Value))
		}
		switch sub.Typ {
		case SubTLVDSLType:
			tlv.DSLType = DSLType(sub.Uint32())
		case SubTLVActualNetDataRateUpstream:
			tlv.UpstreamRate = sub.Uint32()
		case SubTLVActualNetDataRateDownstream:
			tlv.DownstreamRate = sub.Uint32()
		case SubTLVDSLLineState:
			tlv.LineState = DSLLineState(sub.Uint32())
		case SubTLVAccessLoopEncapsulation:
			if len(sub.Value) != accessLoopEncapsulationValueLength {
				return fmt.Errorf("%w: %s carries %d value bytes", ErrMalformedMessage, sub.Typ, len(sub.Value))
			}
			tlv.DataLink = sub.Value[0]
			tlv.TagMode = sub.Value[1]
			tlv.Encaps2 = sub.Value[2]
		default:
			return fmt.Errorf("%w: unexpected sub-TLV %s in %s", ErrMalformedMessage, sub.Typ, tlv.Type())
		}
		value = value[consumed:]
	}
	return nil
}

func (tlv *DSLLineAttributes) Serialize() []byte {
	return serializeTLV(tlv.Type(), AppendByteSlices(
		serializeTLV(SubTLVDSLType, Uint32ToByteSlice(tlv.DSLType)),
		serializeTLV(SubTLVActualNetDataRateUpstream, Uint32ToByteSlice(tlv.UpstreamRate)),
		serializeTLV(SubTLVActualNetDataRateDownstream, Uint32ToByteSlice(tlv.DownstreamRate)),
		serializeTLV(SubTLVDSLLineState, Uint32ToByteSlice(tlv.LineState)),
		serializeTLV(SubTLVAccessLoopEncapsulation, []byte{tlv.DataLink, tlv.TagMode, tlv.Encaps2}),
	))
}

func (tlv *DSLLineAttributes) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint32("dslType", uint32(tlv.DSLType))
	enc.AddUint32("upstreamRate", tlv.UpstreamRate)
	enc.AddUint32("downstreamRate", tlv.DownstreamRate)
	enc.AddBool("showtime", tlv.Showtime())
	enc.AddUint8("tagMode", tlv.TagMode)
	return nil
}

func (tlv *DSLLineAttributes) Type() TLVType {
	return TLVDSLLineAttributes
}

func (tlv *DSLLineAttributes) Len() uint16 {
	return TLVHeaderLength + TLVDSLLineAttributesValueLength
}

func (tlv *DSLLineAttributes) Showtime() bool {
	return tlv.LineState == DSLLineStateShowtime
}

func NewDSLLineAttributes(upstreamRate, downstreamRate uint32, tagMode uint8, showtime bool) *DSLLineAttributes {
	state := DSLLineStateIdle
	if showtime {
		state = DSLLineStateShowtime
	}
	return &DSLLineAttributes{
		DSLType:        DSLTypeVDSL2,
		UpstreamRate:   upstreamRate,
		DownstreamRate: downstreamRate,
		LineState:      state,
		DataLink:       DataLinkEthernet,
		TagMode:        tagMode,
	}
}

// UndefinedTLV is the opaque record every TLV decodes into when its type has no dedicated decoder.
type UndefinedTLV struct {
	Typ    TLVType
	Length uint16
	Value  []byte
}

func (tlv *UndefinedTLV) DecodeFromBytes(data []byte) error {
	raw, _, err := DecodeRawTLV(data)
	if err != nil {
		return err
	}
	*tlv = *raw
	return nil
}

func (tlv *UndefinedTLV) Serialize() []byte {
	return serializeTLV(tlv.Typ, tlv.Value)
}

func (tlv *UndefinedTLV) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint16("type", uint16(tlv.Typ))
	enc.AddBinary("value", tlv.Value)
	return nil
}

func (tlv *UndefinedTLV) Type() TLVType {
	return tlv.Typ
}

func (tlv *UndefinedTLV) Len() uint16 {
	return paddedTLVLen(len(tlv.Value))
}

func (tlv *UndefinedTLV) mustHaveLength(n int) {
	if len(tlv.Value) != n {
		panic(fmt.Sprintf("ancp: %s has %d value bytes, accessor expects %d", tlv.Typ, len(tlv.Value), n))
	}
}

// Uint8 interprets the value as a single byte. It panics if the value is not exactly one byte long.
func (tlv *UndefinedTLV) Uint8() uint8 {
	tlv.mustHaveLength(1)
	return tlv.Value[0]
}

// Uint16 interprets the value as a big-endian uint16. It panics on a width mismatch.
func (tlv *UndefinedTLV) Uint16() uint16 {
	tlv.mustHaveLength(2)
	return binary.BigEndian.Uint16(tlv.Value)
}

// Uint32 interprets the value as a big-endian uint32. It panics on a width mismatch.
func (tlv *UndefinedTLV) Uint32() uint32 {
	tlv.mustHaveLength(4)
	return binary.BigEndian.Uint32(tlv.Value)
}

func (tlv *UndefinedTLV) String() string {
	return string(tlv.Value)
}

func NewUndefinedTLV(typ TLVType, value []byte) *UndefinedTLV {
	return &UndefinedTLV{
		Typ:    typ,
		Length: uint16(len(value)),
		Value:  value,
	}
}

// PeekTLVType reads the type of the TLV at the head of data without consuming it.
func PeekTLVType(data []byte) (TLVType, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: insufficient data to read TLV type", ErrMalformedMessage)
	}
	return TLVType(binary.BigEndian.Uint16(data[0:2])), nil
}

// DecodeRawTLV decodes the TLV at the head of data without interpreting its value.
// The returned count includes the padding that follows the value.
func DecodeRawTLV(data []byte) (*UndefinedTLV, int, error) {
	if len(data) < TLVHeaderLength {
		return nil, 0, fmt.Errorf("%w: %d bytes left, TLV header needs %d", ErrMalformedMessage, len(data), TLVHeaderLength)
	}

	length := binary.BigEndian.Uint16(data[2:4])
	end := TLVHeaderLength + int(length)
	if len(data) < end {
		return nil, 0, fmt.Errorf("%w: TLV length %d exceeds the %d remaining bytes", ErrMalformedMessage, length, len(data)-TLVHeaderLength)
	}

	tlv := &UndefinedTLV{
		Typ:    TLVType(binary.BigEndian.Uint16(data[0:2])),
		Length: length,
		Value:  bytes.Clone(data[TLVHeaderLength:end]),
	}
	return tlv, min(end+Padding(end), len(data)), nil
}

func decodeTLV(data []byte) (TLVInterface, int, error) {
	raw, consumed, err := DecodeRawTLV(data)
	if err != nil {
		return nil, 0, err
	}

	createTLV, found := tlvMap[raw.Typ]
	if !found {
		return raw, consumed, nil
	}

	tlv := createTLV()
	if err := tlv.DecodeFromBytes(data[:TLVHeaderLength+int(raw.Length)]); err != nil {
		return nil, 0, fmt.Errorf("error decoding TLV %s: %w", raw.Typ, err)
	}
	return tlv, consumed, nil
}

// DecodeTLV decodes the TLV at the head of data into its variant, or into an UndefinedTLV for unknown types.
func DecodeTLV(data []byte) (TLVInterface, error) {
	tlv, _, err := decodeTLV(data)
	return tlv, err
}

func DecodeTLVs(data []byte) ([]TLVInterface, error) {
	var tlvs []TLVInterface

	for len(data) > 0 {
		tlv, consumed, err := decodeTLV(data)
		if err != nil {
			return nil, err
		}
		tlvs = append(tlvs, tlv)
		data = data[consumed:]
	}

	return tlvs, nil
}
