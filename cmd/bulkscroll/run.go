package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/durationpb"

	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"
)

func newRunCmd() *cobra.Command {
	var (
		destination     string
		sourcePath      string
		size            int64
		conflicts       string
		refresh         bool
		timeout         time.Duration
		consistency     string
		retryBackoff    time.Duration
		maxRetries      int64
		scrollKeepalive time.Duration
		contextPairs    []string
		headerPairs     []string
	)

	cmd := &cobra.Command{
		Use:   "run <reindex|update_by_query|delete_by_query>",
		Short: "Start a bulk-by-scroll run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opType := args[0]

			searchSource, err := readSearchSource(sourcePath)
			if err != nil {
				return fmt.Errorf("read search source: %w", err)
			}

			req := &grpctransport.StartRunRequest{
				OpType:           opType,
				DestinationIndex: destination,
				SearchSource:     searchSource,
				Size:             size,
				Conflicts:        conflicts,
				Refresh:          refresh,
				Consistency:      consistency,
				MaxRetries:       maxRetries,
				Context:          splitPairs(contextPairs),
				Headers:          splitPairs(headerPairs),
			}
			if timeout > 0 {
				req.Timeout = durationpb.New(timeout)
			}
			if scrollKeepalive > 0 {
				req.ScrollKeepalive = durationpb.New(scrollKeepalive)
			}
			if retryBackoff > 0 {
				req.RetryBackoffInitial = durationpb.New(retryBackoff)
			}

			client, ctx, err := dialControlPlane(cmd)
			if err != nil {
				return err
			}

			resp, err := client.StartRun(ctx, req)
			if err != nil {
				return err
			}

			fmt.Printf("request_id: %s\naccepted_at: %s\n", resp.RequestID, resp.AcceptedAt.AsTime().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&destination, "destination", "", "destination index (reindex only)")
	cmd.Flags().StringVar(&sourcePath, "source", "-", "path to a JSON search_source document, or - for stdin")
	cmd.Flags().Int64Var(&size, "size", -1, "maximum number of documents to process (-1 processes all matches)")
	cmd.Flags().StringVar(&conflicts, "conflicts", "abort", "version-conflict behavior: abort or proceed")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refresh affected indices on completion")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-bulk wait for shard availability (0 uses the backend default)")
	cmd.Flags().StringVar(&consistency, "consistency", "", "write consistency level (empty uses the backend default)")
	cmd.Flags().DurationVar(&retryBackoff, "retry-backoff", 0, "initial retry backoff")
	cmd.Flags().Int64Var(&maxRetries, "max-retries", 0, "retry budget for the whole run (0 keeps the default of 11; applied only together with --retry-backoff)")
	cmd.Flags().DurationVar(&scrollKeepalive, "scroll-keepalive", 0, "scroll cursor keepalive")
	cmd.Flags().StringArrayVar(&contextPairs, "context", nil, "context entry key=value, repeatable")
	cmd.Flags().StringArrayVar(&headerPairs, "header", nil, "propagated header key=value, repeatable")

	return cmd
}

func readSearchSource(path string) (map[string]any, error) {
	var r io.Reader
	switch path {
	case "", "-":
		r = os.Stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var source map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&source); err != nil {
		if err == io.EOF {
			return map[string]any{}, nil
		}
		return nil, err
	}
	return source, nil
}

func splitPairs(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}
