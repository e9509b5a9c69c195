// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/nttcom/ancp/pkg/packet/ancp"
)

func portUpHex(t *testing.T) string {
	t.Helper()
	m := ancp.NewMessage(ancp.MessageTypePortUp)
	m.TransactionID = 42
	m.TLVs = append(m.TLVs, ancp.NewCircuitID("port0/0/1"), ancp.NewDSLLineAttributes(1_000, 2_000, ancp.TagModeUntaggedEthernet, true))
	data, err := m.Serialize()
	require.NoError(t, err)
	return hex.EncodeToString(data)
}

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   bool
	}{
		{name: "Plain hex"},
		{name: "Invalid hex", input: "88zz", err: true},
		{name: "Wrong encapsulation", input: "12340000", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			if input == "" {
				input = portUpHex(t)
			}
			fields, err := decodeHex(input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ancp.MessageTypePortUp.String(), fields["messageType"])
			assert.Equal(t, uint32(42), fields["transactionID"])
			assert.Len(t, fields["tlvs"], 2)
		})
	}
}

func TestDecodeCmd(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		decode func(t *testing.T, out []byte) map[string]any
	}{
		{
			name: "YAML output",
			args: []string{"decode", portUpHex(t)},
			decode: func(t *testing.T, out []byte) map[string]any {
				var v map[string]any
				require.NoError(t, yaml.Unmarshal(out, &v))
				return v
			},
		},
		{
			name: "JSON output",
			args: []string{"decode", "-o", "json", portUpHex(t)},
			decode: func(t *testing.T, out []byte) map[string]any {
				var v map[string]any
				require.NoError(t, json.Unmarshal(out, &v))
				return v
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonFmt = false
			var buf bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&buf)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			v := tt.decode(t, buf.Bytes())
			assert.Equal(t, ancp.MessageTypePortUp.String(), v["messageType"])
		})
	}
}

func TestDecodeCmd_UnknownFormat(t *testing.T) {
	jsonFmt = false
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"decode", "-o", "xml", portUpHex(t)})
	assert.ErrorContains(t, cmd.Execute(), "unknown output format")
}
