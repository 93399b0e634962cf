package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	logAdapter "github.com/nuhsistemas/scankiosk/internal/adapters/log"
)

func newLookupCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>",
		Short: "Show the server access log for a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			logger := logAdapter.NewZerologAdapterWithLogger(c.log)
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.HTTPTimeout)
			defer cancel()

			records, err := c.newClient(logger).QueryAccess(ctx, args[0])
			if err != nil {
				return fmt.Errorf("query access log: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nenhum acesso encontrado")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATA/HORA\tREALIZADO\tLEITOR\tSETOR\tDESCRIÇÃO")
			for _, r := range records {
				done := "Não"
				if r.Granted {
					done = "Sim"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.At, done, r.Reader, r.Sector, r.Description)
			}
			return tw.Flush()
		},
	}
}
