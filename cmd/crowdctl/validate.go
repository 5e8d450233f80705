package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var (
		in     string
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a JSON or YAML snapshot against every snapshot invariant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				return errors.New("--in is required")
			}
			if format == "" {
				format = formatFromPath(in)
			}

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()

			snap, err := decodeSnapshot(f, format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := domain.CheckSnapshot(domain.DefaultRegistry(), snap); err != nil {
				lines := strings.Split(err.Error(), "\n")
				fmt.Fprintf(out, "FAIL %s: %d violation(s)\n", in, len(lines))
				for _, line := range lines {
					fmt.Fprintf(out, "  - %s\n", line)
				}
				return fmt.Errorf("%s: snapshot is invalid", in)
			}
			fmt.Fprintf(out, "PASS %s: %d records, schema v%d, generated %s\n",
				in, len(snap.Records), snap.SchemaVersion, snap.GeneratedAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "snapshot file to validate")
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json or yaml (default from extension)")
	return cmd
}
