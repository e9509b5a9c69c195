// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package ancp

import "errors"

var (
	// ErrMalformedMessage is returned for anything that cannot be decoded: truncated data,
	// inconsistent lengths, unsupported message types or a missing mandatory TLV.
	ErrMalformedMessage = errors.New("ancp: malformed message")
	// ErrInvalidMessageContent is returned when a message is built with content its type cannot carry.
	ErrInvalidMessageContent = errors.New("ancp: invalid message content")
)
