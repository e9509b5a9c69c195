// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show whether ancpd has an established adjacency",
		Args:  cobra.NoArgs,
		RunE:  showHealth,
	}
}

func showHealth(cmd *cobra.Command, args []string) error {
	conn, err := grpc.NewClient(
		net.JoinHostPort(cmd.Flag("host").Value.String(), cmd.Flag("port").Value.String()),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to dial ancpd connection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("failed to retrieve health: %v", err)
	}

	out := cmd.OutOrStdout()
	if jsonFmt {
		outputJSON, err := protojson.Marshal(resp)
		if err != nil {
			return fmt.Errorf("failed to marshal health to JSON: %v", err)
		}
		fmt.Fprintln(out, string(outputJSON))
		return nil
	}
	fmt.Fprintf(out, "status: %s\n", resp.GetStatus())
	return nil
}
