package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/metadata"

	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"
)

// dialControlPlane connects to the endpoint named by --endpoint and returns
// a client stub plus a context carrying the caller's API key, if any.
func dialControlPlane(cmd *cobra.Command) (*grpctransport.ControlPlaneClient, context.Context, error) {
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, nil, err
	}

	cc, err := grpctransport.Dial(endpoint)
	if err != nil {
		return nil, nil, err
	}

	ctx := cmd.Context()
	if apiKey := apiKeyFromFlags(cmd); apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+apiKey)
	}

	return grpctransport.NewControlPlaneClient(cc), ctx, nil
}

// apiKeyFromFlags resolves the admin API key from --api-key, falling back
// to BULKSCROLL_API_KEY.
func apiKeyFromFlags(cmd *cobra.Command) string {
	if key, _ := cmd.Flags().GetString("api-key"); key != "" {
		return key
	}
	return os.Getenv("BULKSCROLL_API_KEY")
}
