// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"go.uber.org/zap/zapcore"
)

type AddressFamily uint8

const (
	AddressFamilyIPv4 AddressFamily = 0x01
	AddressFamilyIPv6 AddressFamily = 0x02
)

func (af AddressFamily) String() string {
	switch af {
	case AddressFamilyIPv4:
		return "IPv4"
	case AddressFamilyIPv6:
		return "IPv6"
	}
	return fmt.Sprintf("Unknown AddressFamily (0x%02x)", uint8(af))
}

// AddrLen returns the address length in bytes, or 0 for an unknown family.
func (af AddressFamily) AddrLen() int {
	switch af {
	case AddressFamilyIPv4:
		return 4
	case AddressFamilyIPv6:
		return 16
	}
	return 0
}

// FamilyOf returns the address family of addr. IPv4-mapped IPv6 addresses are IPv6.
func FamilyOf(addr netip.Addr) AddressFamily {
	if addr.Is4() {
		return AddressFamilyIPv4
	}
	return AddressFamilyIPv6
}

func decodeAddr(data []byte, family AddressFamily) (netip.Addr, error) {
	addr, ok := netip.AddrFromSlice(data)
	if !ok || FamilyOf(addr) != family {
		return netip.Addr{}, fmt.Errorf("%w: invalid %s address %x", ErrMalformedMessage, family, data)
	}
	return addr, nil
}

type ListOperation uint8

const (
	ListOperationAdd     ListOperation = 0x01
	ListOperationDelete  ListOperation = 0x02
	ListOperationReplace ListOperation = 0x03
)

type ListType uint8

const (
	ListTypeWhite ListType = 0x01
	ListTypeGrey  ListType = 0x02
	ListTypeBlack ListType = 0x03
)

var listTypeNames = map[ListType]string{
	ListTypeWhite: "White",
	ListTypeGrey:  "Grey",
	ListTypeBlack: "Black",
}

func (lt ListType) String() string {
	if name, ok := listTypeNames[lt]; ok {
		return name
	}
	return fmt.Sprintf("Unknown ListType (0x%02x)", uint8(lt))
}

// MaxListActionFlows is bounded by the 4-bit flow count of the List-Action TLV.
const MaxListActionFlows = 0x0f

const (
	ListActionOperationOffset = 0
	ListActionListTypeOffset  = 1
	ListActionFamilyOffset    = 3
)

var (
	ErrFamilyMismatch = errors.New("ancp: flow address family differs from the list family")
	ErrTooManyFlows   = errors.New("ancp: too many flows in list action")
)

// checker is implemented by TLVs whose fields may not fit their wire encoding.
type checker interface {
	check() error
}

// ListAction holds the flows of one multicast list. All flows share the family of the first one.
type ListAction struct {
	Operation ListOperation
	ListType  ListType
	Family    AddressFamily
	Flows     []netip.Addr
}

func (tlv *ListAction) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVListAction)
	if err != nil {
		return err
	}
	if len(value) < int(TLVListActionFixedLength) {
		return fmt.Errorf("%w: data is too short: expected at least %d bytes, but got %d bytes for ListAction", ErrMalformedMessage, TLVListActionFixedLength, len(value))
	}

	tlv.Operation = ListOperation(value[ListActionOperationOffset])
	tlv.ListType = ListType(value[ListActionListTypeOffset])
	tlv.Family = AddressFamily(value[ListActionFamilyOffset] >> 4)
	flowCount := int(value[ListActionFamilyOffset] & 0x0f)

	value = value[TLVListActionFixedLength:]
	if flowCount == 0 {
		if len(value) != 0 {
			return fmt.Errorf("%w: %d trailing bytes in empty ListAction", ErrMalformedMessage, len(value))
		}
		return nil
	}

	addrLen := tlv.Family.AddrLen()
	if addrLen == 0 {
		return fmt.Errorf("%w: ListAction with unknown %s", ErrMalformedMessage, tlv.Family)
	}
	if len(value) != flowCount*(1+addrLen) {
		return fmt.Errorf("%w: ListAction with %d %s flows carries %d bytes", ErrMalformedMessage, flowCount, tlv.Family, len(value))
	}

	for i := 0; i < flowCount; i++ {
		if int(value[0]) != addrLen*8 {
			return fmt.Errorf("%w: prefix length %d in %s ListAction", ErrMalformedMessage, value[0], tlv.Family)
		}
		addr, err := decodeAddr(value[1:1+addrLen], tlv.Family)
		if err != nil {
			return err
		}
		tlv.Flows = append(tlv.Flows, addr)
		value = value[1+addrLen:]
	}
	return nil
}

func (tlv *ListAction) Serialize() []byte {
	value := make([]byte, TLVListActionFixedLength, tlv.valueLen())
	value[ListActionOperationOffset] = byte(tlv.Operation)
	value[ListActionListTypeOffset] = byte(tlv.ListType)
	value[ListActionFamilyOffset] = byte(tlv.Family)<<4 | byte(len(tlv.Flows))&0x0f

	for _, flow := range tlv.Flows {
		value = append(value, byte(flow.BitLen()))
		value = append(value, flow.AsSlice()...)
	}
	return serializeTLV(tlv.Type(), value)
}

func (tlv *ListAction) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint8("operation", uint8(tlv.Operation))
	enc.AddString("listType", tlv.ListType.String())
	enc.AddString("family", tlv.Family.String())
	return enc.AddArray("flows", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, flow := range tlv.Flows {
			arr.AppendString(flow.String())
		}
		return nil
	}))
}

func (tlv *ListAction) Type() TLVType {
	return TLVListAction
}

func (tlv *ListAction) Len() uint16 {
	return paddedTLVLen(tlv.valueLen())
}

func (tlv *ListAction) valueLen() int {
	length := int(TLVListActionFixedLength)
	for _, flow := range tlv.Flows {
		length += 1 + flow.BitLen()/8
	}
	return length
}

// AddFlow appends a flow. The first flow fixes the family of the list.
func (tlv *ListAction) AddFlow(addr netip.Addr) error {
	if !addr.IsValid() {
		return fmt.Errorf("%w: invalid flow address", ErrInvalidMessageContent)
	}
	if len(tlv.Flows) >= MaxListActionFlows {
		return fmt.Errorf("%w: %s list already holds %d flows", ErrTooManyFlows, tlv.ListType, len(tlv.Flows))
	}

	family := FamilyOf(addr)
	if len(tlv.Flows) == 0 {
		tlv.Family = family
	} else if tlv.Family != family {
		return fmt.Errorf("%w: %s flow %s added to %s list", ErrFamilyMismatch, family, addr, tlv.Family)
	}
	tlv.Flows = append(tlv.Flows, addr)
	return nil
}

func (tlv *ListAction) check() error {
	if len(tlv.Flows) > MaxListActionFlows {
		return fmt.Errorf("%w: %s list holds %d flows", ErrTooManyFlows, tlv.ListType, len(tlv.Flows))
	}
	for _, flow := range tlv.Flows {
		if !flow.IsValid() || FamilyOf(flow) != tlv.Family {
			return fmt.Errorf("%w: flow %s in %s %s list", ErrFamilyMismatch, flow, tlv.Family, tlv.ListType)
		}
	}
	return nil
}

func (tlv *ListAction) FlowCount() int {
	return len(tlv.Flows)
}

func NewListAction(operation ListOperation, listType ListType) *ListAction {
	return &ListAction{
		Operation: operation,
		ListType:  listType,
	}
}

type FlowType uint8

const (
	FlowTypeASM FlowType = 0x01
	FlowTypeSSM FlowType = 0x02
)

func (ft FlowType) String() string {
	switch ft {
	case FlowTypeASM:
		return "ASM"
	case FlowTypeSSM:
		return "SSM"
	}
	return fmt.Sprintf("Unknown FlowType (0x%02x)", uint8(ft))
}

const (
	McastFlowFlowTypeOffset    = 0
	McastFlowFamilyOffset      = 1
	McastFlowSourceCountOffset = 2
)

type McastFlow struct {
	FlowType FlowType
	Family   AddressFamily
	Group    netip.Addr
	Sources  []netip.Addr // SSM only
}

func (tlv *McastFlow) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVMulticastFlow)
	if err != nil {
		return err
	}
	if len(value) < int(TLVMulticastFlowFixedLength) {
		return fmt.Errorf("%w: data is too short: expected at least %d bytes, but got %d bytes for McastFlow", ErrMalformedMessage, TLVMulticastFlowFixedLength, len(value))
	}

	tlv.FlowType = FlowType(value[McastFlowFlowTypeOffset])
	tlv.Family = AddressFamily(value[McastFlowFamilyOffset])
	sourceCount := int(binary.BigEndian.Uint16(value[McastFlowSourceCountOffset:TLVMulticastFlowFixedLength]))

	if tlv.FlowType != FlowTypeSSM && sourceCount != 0 {
		return fmt.Errorf("%w: %s flow with %d sources", ErrMalformedMessage, tlv.FlowType, sourceCount)
	}
	addrLen := tlv.Family.AddrLen()
	if addrLen == 0 {
		return fmt.Errorf("%w: McastFlow with unknown %s", ErrMalformedMessage, tlv.Family)
	}

	value = value[TLVMulticastFlowFixedLength:]
	if len(value) != addrLen*(1+sourceCount) {
		return fmt.Errorf("%w: McastFlow with %d sources carries %d address bytes", ErrMalformedMessage, sourceCount, len(value))
	}

	if tlv.Group, err = decodeAddr(value[:addrLen], tlv.Family); err != nil {
		return err
	}
	for i := 1; i <= sourceCount; i++ {
		source, err := decodeAddr(value[i*addrLen:(i+1)*addrLen], tlv.Family)
		if err != nil {
			return err
		}
		tlv.Sources = append(tlv.Sources, source)
	}
	return nil
}

func (tlv *McastFlow) Serialize() []byte {
	value := make([]byte, TLVMulticastFlowFixedLength, tlv.valueLen())
	value[McastFlowFlowTypeOffset] = byte(tlv.FlowType)
	value[McastFlowFamilyOffset] = byte(tlv.Family)
	binary.BigEndian.PutUint16(value[McastFlowSourceCountOffset:], uint16(len(tlv.Sources)))

	value = append(value, tlv.Group.AsSlice()...)
	for _, source := range tlv.Sources {
		value = append(value, source.AsSlice()...)
	}
	return serializeTLV(tlv.Type(), value)
}

func (tlv *McastFlow) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("flowType", tlv.FlowType.String())
	enc.AddString("group", tlv.Group.String())
	if len(tlv.Sources) > 0 {
		enc.AddString("source", tlv.Sources[0].String())
	}
	return nil
}

func (tlv *McastFlow) Type() TLVType {
	return TLVMulticastFlow
}

func (tlv *McastFlow) Len() uint16 {
	return paddedTLVLen(tlv.valueLen())
}

func (tlv *McastFlow) valueLen() int {
	return int(TLVMulticastFlowFixedLength) + tlv.Family.AddrLen()*(1+len(tlv.Sources))
}

func (tlv *McastFlow) check() error {
	if !tlv.Group.IsValid() {
		return fmt.Errorf("%w: flow without a group address", ErrInvalidMessageContent)
	}
	for _, addr := range append([]netip.Addr{tlv.Group}, tlv.Sources...) {
		if !addr.IsValid() || FamilyOf(addr) != tlv.Family {
			return fmt.Errorf("%w: address %s in %s flow", ErrFamilyMismatch, addr, tlv.Family)
		}
	}
	return nil
}

func NewASMFlow(group netip.Addr) *McastFlow {
	return &McastFlow{
		FlowType: FlowTypeASM,
		Family:   FamilyOf(group),
		Group:    group,
	}
}

func NewSSMFlow(group, source netip.Addr) (*McastFlow, error) {
	if FamilyOf(group) != FamilyOf(source) {
		return nil, fmt.Errorf("%w: group %s and source %s", ErrFamilyMismatch, group, source)
	}
	return &McastFlow{
		FlowType: FlowTypeSSM,
		Family:   FamilyOf(group),
		Group:    group,
		Sources:  []netip.Addr{source},
	}, nil
}

type CommandCode uint8

const (
	CommandAdd                          CommandCode = 0x01
	CommandDelete                       CommandCode = 0x02
	CommandDeleteAll                    CommandCode = 0x03
	CommandAdmissionCtrlReject          CommandCode = 0x04
	CommandCondAccessReject             CommandCode = 0x05
	CommandAdmissionAndCondAccessReject CommandCode = 0x06
)

var commandCodeNames = map[CommandCode]string{
	CommandAdd:                          "Add",
	CommandDelete:                       "Delete",
	CommandDeleteAll:                    "Delete-All",
	CommandAdmissionCtrlReject:          "Admission-Control-Reject",
	CommandCondAccessReject:             "Conditional-Access-Reject",
	CommandAdmissionAndCondAccessReject: "Admission-Control-and-Conditional-Access-Reject",
}

func (c CommandCode) String() string {
	if name, ok := commandCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown CommandCode (0x%02x)", uint8(c))
}

const (
	CommandCodeOffset       = 0
	CommandAccountingOffset = 1
)

// Command is a multicast command followed by the flow it applies to.
type Command struct {
	Code       CommandCode
	Accounting uint8
	Flow       *McastFlow
}

func (tlv *Command) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVCommand)
	if err != nil {
		return err
	}
	if len(value) < int(TLVCommandFixedLength) {
		return fmt.Errorf("%w: data is too short: expected at least %d bytes, but got %d bytes for Command", ErrMalformedMessage, TLVCommandFixedLength, len(value))
	}

	tlv.Code = CommandCode(value[CommandCodeOffset])
	tlv.Accounting = value[CommandAccountingOffset]

	value = value[TLVCommandFixedLength:]
	if len(value) == 0 {
		return nil
	}

	sub, consumed, err := DecodeRawTLV(value)
	if err != nil {
		return err
	}
	if consumed != len(value) {
		return fmt.Errorf("%w: %d trailing bytes in Command", ErrMalformedMessage, len(value)-consumed)
	}
	tlv.Flow = &McastFlow{}
	return tlv.Flow.DecodeFromBytes(value[:TLVHeaderLength+int(sub.Length)])
}

func (tlv *Command) Serialize() []byte {
	value := make([]byte, TLVCommandFixedLength)
	value[CommandCodeOffset] = byte(tlv.Code)
	value[CommandAccountingOffset] = tlv.Accounting
	if tlv.Flow != nil {
		value = append(value, tlv.Flow.Serialize()...)
	}
	return serializeTLV(tlv.Type(), value)
}

func (tlv *Command) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("command", tlv.Code.String())
	if tlv.Flow != nil {
		return enc.AddObject("flow", tlv.Flow)
	}
	return nil
}

func (tlv *Command) Type() TLVType {
	return TLVCommand
}

func (tlv *Command) Len() uint16 {
	return paddedTLVLen(tlv.valueLen())
}

func (tlv *Command) valueLen() int {
	length := int(TLVCommandFixedLength)
	if tlv.Flow != nil {
		length += int(tlv.Flow.Len())
	}
	return length
}

func (tlv *Command) check() error {
	if tlv.Flow == nil {
		return nil
	}
	return tlv.Flow.check()
}

func NewCommand(code CommandCode, flow *McastFlow) *Command {
	return &Command{
		Code: code,
		Flow: flow,
	}
}

// McastServiceProfile always carries its name followed by the white, grey and black list actions, in that order.
type McastServiceProfile struct {
	Name      string
	WhiteList *ListAction
	GreyList  *ListAction
	BlackList *ListAction
}

func (tlv *McastServiceProfile) DecodeFromBytes(data []byte) error {
	value, err := tlvValue(data, TLVMulticastServiceProfile)
	if err != nil {
		return err
	}

	subTLVs, err := DecodeTLVs(value)
	if err != nil {
		return err
	}
	if len(subTLVs) != 4 {
		return fmt.Errorf("%w: McastServiceProfile carries %d sub-TLVs, expected 4", ErrMalformedMessage, len(subTLVs))
	}

	name, ok := subTLVs[0].(*McastServiceProfileName)
	if !ok {
		return fmt.Errorf("%w: McastServiceProfile starts with %s", ErrMalformedMessage, subTLVs[0].Type())
	}
	tlv.Name = name.Name

	// Lists are taken in emission order; the ListType of each action is kept as received.
	lists := make([]*ListAction, 0, 3)
	for _, sub := range subTLVs[1:] {
		list, ok := sub.(*ListAction)
		if !ok {
			return fmt.Errorf("%w: unexpected %s in McastServiceProfile", ErrMalformedMessage, sub.Type())
		}
		lists = append(lists, list)
	}
	tlv.WhiteList, tlv.GreyList, tlv.BlackList = lists[0], lists[1], lists[2]
	return nil
}

func (tlv *McastServiceProfile) check() error {
	for _, l := range []*ListAction{tlv.WhiteList, tlv.GreyList, tlv.BlackList} {
		if l == nil {
			continue
		}
		if err := l.check(); err != nil {
			return err
		}
	}
	return nil
}

func (tlv *McastServiceProfile) Serialize() []byte {
	value := []byte{}
	for _, sub := range tlv.subTLVs() {
		value = append(value, sub.Serialize()...)
	}
	return serializeTLV(tlv.Type(), value)
}

func (tlv *McastServiceProfile) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", tlv.Name)
	lists := tlv.subTLVs()[1:]
	if err := enc.AddObject("whiteList", lists[0]); err != nil {
		return err
	}
	if err := enc.AddObject("greyList", lists[1]); err != nil {
		return err
	}
	return enc.AddObject("blackList", lists[2])
}

func (tlv *McastServiceProfile) Type() TLVType {
	return TLVMulticastServiceProfile
}

func (tlv *McastServiceProfile) Len() uint16 {
	length := 0
	for _, sub := range tlv.subTLVs() {
		length += int(sub.Len())
	}
	return paddedTLVLen(length)
}

// subTLVs substitutes an empty list action for each missing list.
func (tlv *McastServiceProfile) subTLVs() []TLVInterface {
	list := func(l *ListAction, listType ListType) *ListAction {
		if l == nil {
			return &ListAction{ListType: listType}
		}
		return l
	}
	return []TLVInterface{
		NewMcastServiceProfileName(tlv.Name),
		list(tlv.WhiteList, ListTypeWhite),
		list(tlv.GreyList, ListTypeGrey),
		list(tlv.BlackList, ListTypeBlack),
	}
}

// NewMcastServiceProfile builds a profile whose non-empty lists use the Add operation.
func NewMcastServiceProfile(name string, whiteList, greyList, blackList []netip.Addr) (*McastServiceProfile, error) {
	newList := func(listType ListType, flows []netip.Addr) (*ListAction, error) {
		if len(flows) == 0 {
			return &ListAction{ListType: listType}, nil
		}
		l := NewListAction(ListOperationAdd, listType)
		for _, flow := range flows {
			if err := l.AddFlow(flow); err != nil {
				return nil, err
			}
		}
		return l, nil
	}

	tlv := &McastServiceProfile{Name: name}
	var err error
	if tlv.WhiteList, err = newList(ListTypeWhite, whiteList); err != nil {
		return nil, err
	}
	if tlv.GreyList, err = newList(ListTypeGrey, greyList); err != nil {
		return nil, err
	}
	if tlv.BlackList, err = newList(ListTypeBlack, blackList); err != nil {
		return nil, err
	}
	return tlv, nil
}
