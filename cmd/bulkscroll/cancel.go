package main

import (
	"fmt"

	"github.com/spf13/cobra"

	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"
)

func newCancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <request_id>",
		Short: "Request cooperative cancellation of a running bulk-by-scroll run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, err := dialControlPlane(cmd)
			if err != nil {
				return err
			}

			resp, err := client.CancelRun(ctx, &grpctransport.CancelRunRequest{
				RequestID: args[0],
				Reason:    reason,
			})
			if err != nil {
				return err
			}

			if !resp.Accepted {
				fmt.Println("no running driver found for that request_id; it may already be finished")
				return nil
			}
			fmt.Println("cancellation requested")
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded against the run's canceled status")

	return cmd
}
