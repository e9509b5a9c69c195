// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	yaml "gopkg.in/yaml.v2"

	"github.com/nttcom/ancp/pkg/packet/ancp"
)

func newDecodeCmd() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode an encapsulated ANCP message",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}
	decodeCmd.Flags().StringP("output", "o", "yaml", "output format (yaml|json)")
	return decodeCmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to retrieve 'output' flag: %v", err)
	}
	if jsonFmt {
		output = "json"
	}

	fields, err := decodeHex(args[0])
	if err != nil {
		return err
	}

	var out []byte
	switch output {
	case "yaml":
		out, err = yaml.Marshal(fields)
	case "json":
		out, err = json.Marshal(fields)
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// decodeHex decodes a message given in hex, spaces and colons allowed, into its logged fields.
func decodeHex(s string) (map[string]any, error) {
	s = strings.NewReplacer(" ", "", ":", "", "\n", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %v", err)
	}

	m, err := ancp.DecodeMessage(data)
	if err != nil {
		return nil, err
	}

	enc := zapcore.NewMapObjectEncoder()
	if err := m.MarshalLogObject(enc); err != nil {
		return nil, err
	}
	return enc.Fields, nil
}
