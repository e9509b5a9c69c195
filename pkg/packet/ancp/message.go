// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap/zapcore"
)

type MessageType uint8

const ( // ANCP Message-Type (1byte)
	MessageTypeAdjacency               MessageType = 10  // RFC6320
	MessageTypePortManagement          MessageType = 32  // RFC6320
	MessageTypePortUp                  MessageType = 80  // RFC6320
	MessageTypePortDown                MessageType = 81  // RFC6320
	MessageTypeAdjacencyUpdate         MessageType = 85  // RFC6320
	MessageTypeGenericResponse         MessageType = 91  // RFC6320
	MessageTypeProvisioning            MessageType = 93  // RFC7256
	MessageTypeMcastReplicationControl MessageType = 144 // RFC7256
	MessageTypeMcastAdmissionControl   MessageType = 145 // RFC7256
)

var messageTypeNames = map[MessageType]string{
	MessageTypeAdjacency:               "Adjacency",
	MessageTypePortManagement:          "Port-Management",
	MessageTypePortUp:                  "Port-Up",
	MessageTypePortDown:                "Port-Down",
	MessageTypeAdjacencyUpdate:         "Adjacency-Update",
	MessageTypeGenericResponse:         "Generic-Response",
	MessageTypeProvisioning:            "Provisioning",
	MessageTypeMcastReplicationControl: "Multicast-Replication-Control",
	MessageTypeMcastAdmissionControl:   "Multicast-Admission-Control",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown MessageType (%d)", uint8(t))
}

// IsEvent reports whether t belongs to the event messages, which carry a technology type
// and no function field.
func (t MessageType) IsEvent() bool {
	return t == MessageTypePortUp || t == MessageTypePortDown
}

// supportedGenericTypes lists the TLV-carrying message types the decoder understands.
var supportedGenericTypes = map[MessageType]bool{
	MessageTypePortManagement:          true,
	MessageTypePortUp:                  true,
	MessageTypePortDown:                true,
	MessageTypeGenericResponse:         true,
	MessageTypeProvisioning:            true,
	MessageTypeMcastReplicationControl: true,
	MessageTypeMcastAdmissionControl:   true,
}

type AdjacencyCode uint8

const (
	AdjacencySYN    AdjacencyCode = 0x01
	AdjacencySYNACK AdjacencyCode = 0x02
	AdjacencyACK    AdjacencyCode = 0x03
	AdjacencyRSTACK AdjacencyCode = 0x04
)

func (c AdjacencyCode) String() string {
	switch c {
	case AdjacencySYN:
		return "SYN"
	case AdjacencySYNACK:
		return "SYNACK"
	case AdjacencyACK:
		return "ACK"
	case AdjacencyRSTACK:
		return "RSTACK"
	}
	return fmt.Sprintf("Unknown AdjacencyCode (%d)", uint8(c))
}

// Result is the 4-bit result field. In requests it selects the response mode.
type Result uint8

const (
	ResultIgnore  Result = 0x00
	ResultNack    Result = 0x01
	ResultAckAll  Result = 0x02
	ResultSuccess Result = 0x03
	ResultFailure Result = 0x04
)

func (r Result) String() string {
	switch r {
	case ResultIgnore:
		return "Ignore"
	case ResultNack:
		return "Nack"
	case ResultAckAll:
		return "AckAll"
	case ResultSuccess:
		return "Success"
	case ResultFailure:
		return "Failure"
	}
	return fmt.Sprintf("Unknown Result (%d)", uint8(r))
}

// Name is the 48-bit sender or receiver name of an adjacency, usually a MAC address.
type Name [6]byte

func (n Name) String() string {
	return net.HardwareAddr(n[:]).String()
}

func ParseName(s string) (Name, error) {
	var n Name
	hw, err := net.ParseMAC(s)
	if err != nil {
		return n, err
	}
	if len(hw) != len(n) {
		return n, fmt.Errorf("invalid name %q: expected %d bytes, but got %d", s, len(n), len(hw))
	}
	copy(n[:], hw)
	return n, nil
}

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

const (
	EncapsulationIdentifier   uint16 = 0x880c
	EncapsulationHeaderLength        = 4
	Version                   uint8  = 0x31 // version 3, sub-version 1
)

// Fixed message sizes including the encapsulation header
const (
	AdjacencyMessageLength = 40
	EventMessageLength     = 44
	GenericMessageLength   = 52
)

const (
	MaxTransactionID = 0x00ffffff
	MaxResultCode    = 0x0fff
)

const (
	FunctionConfigureConnectionServiceData uint8 = 0x08
	TechTypeDSL                            uint8 = 0x05
)

const (
	nasOriginatedFlag   uint8  = 0x80
	adjacencyCodeMask   uint8  = 0x7f
	noFragmentationMark uint16 = 0x8001 // I=1, SubMessage Number=1
)

// Message is a decoded ANCP message. Capabilities are only carried by Adjacency messages,
// TLVs by every other type.
type Message struct {
	MessageType MessageType

	// Adjacency
	Timer            uint8 // units of 100ms
	AdjacencyCode    AdjacencyCode
	IsNASOriginated  bool
	SenderName       Name
	ReceiverName     Name
	SenderPort       uint32
	ReceiverPort     uint32
	SenderInstance   uint32
	ReceiverInstance uint32
	Capabilities     []CapabilityInterface

	// Shared
	PartitionID uint8

	// TLV-carrying messages
	ResponseMode  Result
	ResultCode    uint16
	TransactionID uint32
	Function      uint8
	TLVs          []TLVInterface
}

func NewMessage(t MessageType) *Message {
	m := &Message{}
	m.SetType(t)
	return m
}

// SetType assigns the message type along with its default response mode and function.
func (m *Message) SetType(t MessageType) {
	m.MessageType = t
	m.Function = 0
	switch t {
	case MessageTypePortManagement:
		m.ResponseMode = ResultNack
		m.Function = FunctionConfigureConnectionServiceData
	case MessageTypeMcastReplicationControl:
		m.ResponseMode = ResultNack
	default:
		m.ResponseMode = ResultIgnore
	}
}

func (m *Message) AddTLV(tlv TLVInterface) error {
	if m.MessageType == MessageTypeAdjacency {
		return fmt.Errorf("%w: %s message cannot carry TLV %s", ErrInvalidMessageContent, m.MessageType, tlv.Type())
	}
	m.TLVs = append(m.TLVs, tlv)
	return nil
}

func (m *Message) AddCapability(c CapabilityInterface) error {
	if m.MessageType != MessageTypeAdjacency {
		return fmt.Errorf("%w: %s message cannot carry capability %s", ErrInvalidMessageContent, m.MessageType, c.CapabilityType())
	}
	m.Capabilities = append(m.Capabilities, c)
	return nil
}

// FindTLV returns the first TLV of type T carried by m.
func FindTLV[T TLVInterface](m *Message) (T, bool) {
	for _, tlv := range m.TLVs {
		if t, ok := tlv.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// HasTLV reports whether m carries a TLV of the given type.
func (m *Message) HasTLV(typ TLVType) bool {
	for _, tlv := range m.TLVs {
		if tlv.Type() == typ {
			return true
		}
	}
	return false
}

func (m *Message) fixedLen() int {
	switch {
	case m.MessageType == MessageTypeAdjacency:
		return AdjacencyMessageLength
	case m.MessageType.IsEvent():
		return EventMessageLength
	}
	return GenericMessageLength
}

func (m *Message) bodyLen() int {
	length := 0
	if m.MessageType == MessageTypeAdjacency {
		for _, c := range m.Capabilities {
			length += int(c.Len())
		}
		return length
	}
	for _, tlv := range m.TLVs {
		length += int(tlv.Len())
	}
	return length
}

// TimerUnit is the granularity of the adjacency Timer field.
const TimerUnit = 100 * time.Millisecond

// AdjacencyTimer converts a keepalive period to Timer field units, saturating at 0xff.
func AdjacencyTimer(d time.Duration) uint8 {
	return uint8(min(max(d/TimerUnit, 0), 0xff))
}

// Len returns the serialized size including the encapsulation header.
func (m *Message) Len() int {
	return m.fixedLen() + m.bodyLen()
}

func (m *Message) Serialize() ([]byte, error) {
	if m.MessageType == MessageTypeAdjacency && len(m.TLVs) > 0 {
		return nil, fmt.Errorf("%w: %s message with %d TLVs", ErrInvalidMessageContent, m.MessageType, len(m.TLVs))
	}
	if m.MessageType != MessageTypeAdjacency && len(m.Capabilities) > 0 {
		return nil, fmt.Errorf("%w: %s message with %d capabilities", ErrInvalidMessageContent, m.MessageType, len(m.Capabilities))
	}
	for _, tlv := range m.TLVs {
		if c, ok := tlv.(checker); ok {
			if err := c.check(); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMessageContent, tlv.Type(), err)
			}
		}
	}
	length := m.Len()
	if length-EncapsulationHeaderLength > 0xffff {
		return nil, fmt.Errorf("%w: message length %d exceeds the encapsulation limit", ErrInvalidMessageContent, length)
	}

	buf := make([]byte, m.fixedLen(), length)
	binary.BigEndian.PutUint16(buf[0:2], EncapsulationIdentifier)
	binary.BigEndian.PutUint16(buf[2:4], uint16(length-EncapsulationHeaderLength))
	buf[4] = Version
	buf[5] = uint8(m.MessageType)

	var err error
	if m.MessageType == MessageTypeAdjacency {
		buf, err = m.serializeAdjacency(buf)
	} else {
		buf, err = m.serializeGeneric(buf)
	}
	if err != nil {
		return nil, err
	}
	if len(buf) != length {
		return nil, fmt.Errorf("%w: %s message encoded %d bytes, header says %d", ErrInvalidMessageContent, m.MessageType, len(buf), length)
	}
	return buf, nil
}

func (m *Message) serializeAdjacency(buf []byte) ([]byte, error) {
	if len(m.Capabilities) > 0xff {
		return nil, fmt.Errorf("%w: %d capabilities", ErrInvalidMessageContent, len(m.Capabilities))
	}
	buf[6] = m.Timer
	buf[7] = SetBit(uint8(m.AdjacencyCode)&adjacencyCodeMask, nasOriginatedFlag, m.IsNASOriginated)
	copy(buf[8:14], m.SenderName[:])
	copy(buf[14:20], m.ReceiverName[:])
	binary.BigEndian.PutUint32(buf[20:24], m.SenderPort)
	binary.BigEndian.PutUint32(buf[24:28], m.ReceiverPort)
	PutUint24(buf[28:32], 0, m.SenderInstance)
	PutUint24(buf[32:36], m.PartitionID, m.ReceiverInstance)
	buf[37] = uint8(len(m.Capabilities))
	binary.BigEndian.PutUint16(buf[38:40], uint16(m.bodyLen()))

	for _, c := range m.Capabilities {
		buf = append(buf, c.Serialize()...)
	}
	return buf, nil
}

func (m *Message) serializeGeneric(buf []byte) ([]byte, error) {
	if len(m.TLVs) > 0xffff {
		return nil, fmt.Errorf("%w: %d TLVs", ErrInvalidMessageContent, len(m.TLVs))
	}
	binary.BigEndian.PutUint16(buf[6:8], uint16(m.ResponseMode)<<12|m.ResultCode&MaxResultCode)
	PutUint24(buf[8:12], m.PartitionID, m.TransactionID)
	binary.BigEndian.PutUint16(buf[12:14], noFragmentationMark)
	copy(buf[14:16], buf[2:4])
	// buf[16:36] is the reserved port/session/sequence block.

	off := EventMessageLength - 8
	if !m.MessageType.IsEvent() {
		buf[37] = m.Function
		off = GenericMessageLength - 8
	} else {
		buf[off+2] = TechTypeDSL
	}
	binary.BigEndian.PutUint16(buf[off+4:off+6], uint16(len(m.TLVs)))
	binary.BigEndian.PutUint16(buf[off+6:off+8], uint16(m.bodyLen()))

	for _, tlv := range m.TLVs {
		buf = append(buf, tlv.Serialize()...)
	}
	return buf, nil
}

// DecodeFromBytes decodes one complete message, encapsulation header included.
func (m *Message) DecodeFromBytes(data []byte) error {
	if len(data) < EncapsulationHeaderLength+2 {
		return fmt.Errorf("%w: %d bytes is too short for a message", ErrMalformedMessage, len(data))
	}
	if id := binary.BigEndian.Uint16(data[0:2]); id != EncapsulationIdentifier {
		return fmt.Errorf("%w: encapsulation identifier 0x%04x", ErrMalformedMessage, id)
	}
	if length := int(binary.BigEndian.Uint16(data[2:4])); length != len(data)-EncapsulationHeaderLength {
		return fmt.Errorf("%w: encapsulation length %d, but got %d bytes", ErrMalformedMessage, length, len(data)-EncapsulationHeaderLength)
	}
	if data[4] != Version {
		return fmt.Errorf("%w: unsupported version 0x%02x", ErrMalformedMessage, data[4])
	}

	m.MessageType = MessageType(data[5])
	var err error
	switch {
	case m.MessageType == MessageTypeAdjacency:
		err = m.decodeAdjacency(data)
	case supportedGenericTypes[m.MessageType]:
		err = m.decodeGeneric(data)
	default:
		err = fmt.Errorf("%w: unsupported message type %s", ErrMalformedMessage, m.MessageType)
	}
	if err != nil {
		return err
	}

	if m.Len() != len(data) {
		return fmt.Errorf("%w: %s decodes to %d bytes, but %d were received", ErrMalformedMessage, m.MessageType, m.Len(), len(data))
	}
	return nil
}

func (m *Message) decodeAdjacency(data []byte) error {
	if len(data) < AdjacencyMessageLength {
		return fmt.Errorf("%w: Adjacency message needs %d bytes, but got %d", ErrMalformedMessage, AdjacencyMessageLength, len(data))
	}
	m.Timer = data[6]
	m.IsNASOriginated = IsBitSet(data[7], nasOriginatedFlag)
	m.AdjacencyCode = AdjacencyCode(data[7] & adjacencyCodeMask)
	copy(m.SenderName[:], data[8:14])
	copy(m.ReceiverName[:], data[14:20])
	m.SenderPort = binary.BigEndian.Uint32(data[20:24])
	m.ReceiverPort = binary.BigEndian.Uint32(data[24:28])
	_, m.SenderInstance = Uint24(data[28:32])
	m.PartitionID, m.ReceiverInstance = Uint24(data[32:36])

	count := int(data[37])
	capsLen := int(binary.BigEndian.Uint16(data[38:40]))
	if AdjacencyMessageLength+capsLen != len(data) {
		return fmt.Errorf("%w: capability length %d does not match the %d remaining bytes", ErrMalformedMessage, capsLen, len(data)-AdjacencyMessageLength)
	}

	caps, consumed, err := DecodeCapabilities(data[AdjacencyMessageLength:], count)
	if err != nil {
		return err
	}
	if consumed != capsLen {
		return fmt.Errorf("%w: %d capabilities occupy %d of %d bytes", ErrMalformedMessage, count, consumed, capsLen)
	}
	if len(caps) > 0 {
		m.Capabilities = caps
	}
	return nil
}

func (m *Message) decodeGeneric(data []byte) error {
	fixed := GenericMessageLength
	if m.MessageType.IsEvent() {
		fixed = EventMessageLength
	}
	if len(data) < fixed {
		return fmt.Errorf("%w: %s message needs %d bytes, but got %d", ErrMalformedMessage, m.MessageType, fixed, len(data))
	}

	result := binary.BigEndian.Uint16(data[6:8])
	m.ResponseMode = Result(result >> 12)
	m.ResultCode = result & MaxResultCode
	m.PartitionID, m.TransactionID = Uint24(data[8:12])
	if mark := binary.BigEndian.Uint16(data[12:14]); mark != noFragmentationMark {
		return fmt.Errorf("%w: fragmented message (0x%04x)", ErrMalformedMessage, mark)
	}
	if length := binary.BigEndian.Uint16(data[14:16]); int(length) != len(data)-EncapsulationHeaderLength {
		return fmt.Errorf("%w: message length %d differs from the encapsulation length", ErrMalformedMessage, length)
	}
	if !m.MessageType.IsEvent() {
		m.Function = data[37]
	}

	off := fixed - 8
	count := int(binary.BigEndian.Uint16(data[off+4 : off+6]))
	extLen := int(binary.BigEndian.Uint16(data[off+6 : off+8]))
	if fixed+extLen != len(data) {
		return fmt.Errorf("%w: extension block length %d does not match the %d remaining bytes", ErrMalformedMessage, extLen, len(data)-fixed)
	}

	body := data[fixed:]
	for i := 0; i < count; i++ {
		tlv, consumed, err := decodeTLV(body)
		if err != nil {
			return fmt.Errorf("TLV %d of %d: %w", i+1, count, err)
		}
		m.TLVs = append(m.TLVs, tlv)
		body = body[consumed:]
	}
	if len(body) != 0 {
		return fmt.Errorf("%w: %d bytes left after %d TLVs", ErrMalformedMessage, len(body), count)
	}
	return nil
}

func (m *Message) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("messageType", m.MessageType.String())
	if m.MessageType == MessageTypeAdjacency {
		enc.AddString("code", m.AdjacencyCode.String())
		enc.AddString("senderName", m.SenderName.String())
		enc.AddUint32("senderInstance", m.SenderInstance)
		enc.AddBool("nasOriginated", m.IsNASOriginated)
		return enc.AddArray("capabilities", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
			for _, c := range m.Capabilities {
				arr.AppendString(c.CapabilityType().String())
			}
			return nil
		}))
	}
	enc.AddString("responseMode", m.ResponseMode.String())
	enc.AddUint32("transactionID", m.TransactionID)
	return enc.AddArray("tlvs", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, tlv := range m.TLVs {
			if err := arr.AppendObject(tlv); err != nil {
				return err
			}
		}
		return nil
	}))
}

func DecodeMessage(data []byte) (*Message, error) {
	m := &Message{}
	if err := m.DecodeFromBytes(data); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadMessage reads one encapsulated message from r and returns its raw bytes.
func ReadMessage(r io.Reader) ([]byte, error) {
	header := make([]byte, EncapsulationHeaderLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if id := binary.BigEndian.Uint16(header[0:2]); id != EncapsulationIdentifier {
		return nil, fmt.Errorf("%w: encapsulation identifier 0x%04x", ErrMalformedMessage, id)
	}

	length := binary.BigEndian.Uint16(header[2:4])
	buf := make([]byte, EncapsulationHeaderLength+int(length))
	copy(buf, header)
	if _, err := io.ReadFull(r, buf[EncapsulationHeaderLength:]); err != nil {
		return nil, err
	}
	return buf, nil
}
