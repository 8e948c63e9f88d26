package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rezkam/bulkscroll/internal/audit"
	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"
)

func newStatusCmd() *cobra.Command {
	var (
		watch        bool
		pollInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status <request_id>",
		Short: "Report the status of a bulk-by-scroll run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, err := dialControlPlane(cmd)
			if err != nil {
				return err
			}
			requestID := args[0]

			if !watch || !isatty.IsTerminal(os.Stdout.Fd()) {
				resp, err := client.GetStatus(ctx, &grpctransport.GetStatusRequest{RequestID: requestID})
				if err != nil {
					return err
				}
				return printStatus(resp)
			}

			return watchStatus(ctx, client, requestID, pollInterval)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "poll and render a progress bar until the run finishes")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "polling interval with --watch")

	return cmd
}

func printStatus(resp *grpctransport.GetStatusResponse) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// watchStatus polls GetStatus until the run reaches a terminal state,
// rendering a progress bar against the running total of processed
// documents (updated + created + deleted).
func watchStatus(ctx context.Context, client *grpctransport.ControlPlaneClient, requestID string, interval time.Duration) error {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(requestID),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := client.GetStatus(ctx, &grpctransport.GetStatusRequest{RequestID: requestID})
		if err != nil {
			return err
		}

		if bar.GetMax64() < resp.Status.Total {
			bar.ChangeMax64(resp.Status.Total)
		}
		processed := resp.Status.Updated
		if resp.Status.Created != nil {
			processed += *resp.Status.Created
		}
		if resp.Status.Deleted != nil {
			processed += *resp.Status.Deleted
		}
		_ = bar.Set64(processed)

		switch audit.RunState(resp.State) {
		case audit.RunSucceeded, audit.RunFailed, audit.RunCanceled:
			fmt.Fprintln(os.Stderr)
			return printStatus(resp)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
