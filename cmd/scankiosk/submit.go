package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nuhsistemas/scankiosk/internal/adapters/console"
	"github.com/nuhsistemas/scankiosk/internal/adapters/fs"
	logAdapter "github.com/nuhsistemas/scankiosk/internal/adapters/log"
	"github.com/nuhsistemas/scankiosk/internal/app"
	"github.com/nuhsistemas/scankiosk/internal/domain"
)

func newSubmitCmd(c *cli) *cobra.Command {
	channel := domain.ChannelKeyboard

	cmd := &cobra.Command{
		Use:   "submit <value>",
		Short: "Validate one credential and log it to the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			logger := logAdapter.NewZerologAdapterWithLogger(c.log)
			client := c.newClient(logger)
			presenter := console.NewPresenter(cmd.OutOrStdout(), func() string { return client.Station().BaseURL })
			arb := app.NewArbitrator(app.ArbitratorConfig{
				Cooldown:      c.cfg.Cooldown,
				ResultTimeout: c.cfg.ResultTimeout,
			}, client, fs.NewHistoryFile(c.cfg.StateDir), presenter, logger)

			err := arb.Submit(cmd.Context(), args[0], channel)
			if errors.Is(err, domain.ErrEmptyValue) {
				return fmt.Errorf("nothing to submit")
			}
			if err != nil {
				return err
			}
			if outcome, ok := arb.Current(); ok && !outcome.Success {
				return fmt.Errorf("access denied: %s", outcome.Message)
			}
			return nil
		},
	}
	cmd.Flags().Var(&channelFlag{&channel}, "channel", "input channel (keyboard, qrcode, nfc, facial)")
	return cmd
}

// channelFlag adapts domain.Channel to pflag.Value.
type channelFlag struct {
	ch *domain.Channel
}

func (f *channelFlag) String() string {
	if f.ch == nil {
		return ""
	}
	return f.ch.String()
}

func (f *channelFlag) Set(s string) error {
	ch, err := domain.ParseChannel(s)
	if err != nil {
		return err
	}
	*f.ch = ch
	return nil
}

func (f *channelFlag) Type() string { return "channel" }
