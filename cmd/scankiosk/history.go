package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nuhsistemas/scankiosk/internal/adapters/fs"
	"github.com/nuhsistemas/scankiosk/internal/domain"
)

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect, export or clear the local scan history",
	}
	cmd.AddCommand(newHistoryListCmd(c), newHistoryExportCmd(c), newHistoryClearCmd(c))
	return cmd
}

func (c *cli) historyFile() (*fs.HistoryFile, error) {
	if err := c.cfg.ResolveStateDir(); err != nil {
		return nil, err
	}
	return fs.NewHistoryFile(c.cfg.StateDir), nil
}

func newHistoryListCmd(c *cli) *cobra.Command {
	var filter string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.historyFile()
			if err != nil {
				return err
			}
			entries, err := h.List(cmd.Context())
			if err != nil {
				return err
			}
			entries = domain.FilterHistory(entries, filter)

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Nenhum registro encontrado")
				return nil
			}
			total := len(entries)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-16s %-8s %-7s %s  %s\n",
					humanize.Time(e.Scan.Timestamp),
					e.Scan.Channel,
					entryStatus(e),
					e.Scan.Value,
					e.Message())
			}
			if total > len(entries) {
				fmt.Fprintf(out, "... %s de %s registros\n", humanize.Comma(int64(len(entries))), humanize.Comma(int64(total)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only scans whose value contains this text")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to print (0 for all)")
	return cmd
}

func entryStatus(e domain.HistoryEntry) string {
	switch {
	case e.Failure != nil:
		return "ERRO"
	case e.Granted():
		return "LIBERADO"
	default:
		return "NEGADO"
	}
}

func newHistoryExportCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history as a semicolon-separated CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.historyFile()
			if err != nil {
				return err
			}
			entries, err := h.List(cmd.Context())
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				name := fmt.Sprintf("historico_%s.csv", time.Now().Format("20060102_150405"))
				path = filepath.Join(c.cfg.StateDir, name)
			}
			if err := fs.ExportHistoryCSV(path, entries, time.Local); err != nil {
				if errors.Is(err, fs.ErrEmptyHistory) {
					return errors.New("não há registros para exportar")
				}
				return fmt.Errorf("export history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s registros exportados para %s\n", humanize.Comma(int64(len(entries))), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default: state dir)")
	return cmd
}

func newHistoryClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := c.historyFile()
			if err != nil {
				return err
			}
			if err := h.Clear(cmd.Context()); err != nil {
				return err
			}
			c.log.Info().Str("path", h.Path()).Msg("history cleared")
			return nil
		},
	}
}
