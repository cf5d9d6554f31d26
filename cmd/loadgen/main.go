package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:   "loadgen",
		Short: "Synthetic traffic generator for the log collector",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3000/logs", "Collector logs endpoint")

	root.AddCommand(newOneCommand(&serverURL))
	root.AddCommand(newBatchCommand(&serverURL))
	root.AddCommand(newGetCommand(&serverURL))
	return root
}

func newOneCommand(serverURL *string) *cobra.Command {
	var service string
	var repeat int
	var sleep time.Duration

	cmd := &cobra.Command{
		Use:   "one",
		Short: "Send single log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(*serverURL)
			for i := 0; i < repeat; i++ {
				client.sendOne(service)
				if i < repeat-1 {
					time.Sleep(sleep)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "api-service", "Service identity to send as")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Number of requests to send")
	cmd.Flags().DurationVar(&sleep, "sleep", time.Second, "Pause between requests")
	return cmd
}

func newBatchCommand(serverURL *string) *cobra.Command {
	var service string
	var batchSize, repeat int
	var sleep time.Duration

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Send batched log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(*serverURL)
			for i := 0; i < repeat; i++ {
				client.sendBatch(service, batchSize)
				if i < repeat-1 {
					time.Sleep(sleep)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "api-service", "Service identity to send as")
	cmd.Flags().IntVar(&batchSize, "batch-size", 5, "Records per batch")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Number of batches to send")
	cmd.Flags().DurationVar(&sleep, "sleep", time.Second, "Pause between batches")
	return cmd
}

func newGetCommand(serverURL *string) *cobra.Command {
	var filters queryFilters

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Query stored log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(*serverURL).getLogs(filters)
		},
	}
	cmd.Flags().StringVar(&filters.Service, "service", "all", "Filter by service (all disables)")
	cmd.Flags().StringVar(&filters.Severity, "severity", "all", "Filter by severity (all disables)")
	cmd.Flags().IntVar(&filters.Limit, "limit", 10, "How many logs to fetch")
	cmd.Flags().IntVar(&filters.Offset, "offset", 0, "Pagination offset")
	cmd.Flags().StringVar(&filters.TimestampStart, "timestamp-start", "", "Start timestamp filter")
	cmd.Flags().StringVar(&filters.TimestampEnd, "timestamp-end", "", "End timestamp filter")
	cmd.Flags().StringVar(&filters.ReceivedAtStart, "received-at-start", "", "Start received_at filter")
	cmd.Flags().StringVar(&filters.ReceivedAtEnd, "received-at-end", "", "End received_at filter")
	return cmd
}
