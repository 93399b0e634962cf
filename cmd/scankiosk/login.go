package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	logAdapter "github.com/nuhsistemas/scankiosk/internal/adapters/log"
	"github.com/nuhsistemas/scankiosk/internal/cliconfig"
	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

func newLoginCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check the server URL and PIN, resolve the station sector and save the settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := cliconfig.NormalizeBaseURL(c.cfg.BaseURL)
			if err != nil {
				return err
			}
			if c.cfg.PIN == "" {
				return fmt.Errorf("%w: pin is required", domain.ErrInvalidConfig)
			}
			if c.cfgFile == "" {
				return errors.New("no settings file path; pass --config")
			}

			logger := logAdapter.NewZerologAdapterWithLogger(c.log)
			station := ports.Station{BaseURL: base, PIN: c.cfg.PIN}

			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.HTTPTimeout)
			defer cancel()
			sector, err := c.newClient(logger).LookupSector(ctx, station)
			if err != nil {
				return fmt.Errorf("lookup sector: %w", err)
			}

			var fc cliconfig.FileConfig
			if cliconfig.FileExists(c.cfgFile) {
				if fc, err = cliconfig.LoadFileConfig(c.cfgFile); err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			fc.BaseURL = base
			fc.PIN = station.PIN
			fc.Sector = sector
			if err := cliconfig.SaveFileConfig(c.cfgFile, fc); err != nil {
				return err
			}

			c.log.Info().Str("path", c.cfgFile).Str("sector", sector).Msg("settings saved")
			if sector == "" {
				sector = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conectado a %s (setor %s)\n", base, sector)
			return nil
		},
	}
}
