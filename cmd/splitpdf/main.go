// Package main is the splitpdf command, a local page-range splitter that
// drives the same extraction engine as the HTTP service without any server,
// registry, or rate limiting.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docslice/go-pdf-splitter/internal/pdf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "splitpdf: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "splitpdf <input> <output> <start> [end]",
		Short: "Extract a page range from a PDF into a new file",
		Long: `splitpdf reads a local PDF and writes pages [start, end] to a new file.
Pages are 1-based and the range is inclusive; when end is omitted the range
runs through the last page.`,
		Args:         cobra.RangeArgs(3, 4),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			start, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("start page %q is not an integer", args[2])
			}
			end := 0
			if len(args) == 4 {
				if end, err = strconv.Atoi(args[3]); err != nil {
					return fmt.Errorf("end page %q is not an integer", args[3])
				}
			}

			pages, err := pdf.NewSplitter().Split(cmd.Context(), input, output, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d page(s) to %s\n", pages, output)
			return nil
		},
	}
}
