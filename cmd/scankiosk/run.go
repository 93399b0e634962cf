package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nuhsistemas/scankiosk/internal/adapters/console"
	"github.com/nuhsistemas/scankiosk/internal/adapters/device"
	"github.com/nuhsistemas/scankiosk/internal/adapters/fs"
	logAdapter "github.com/nuhsistemas/scankiosk/internal/adapters/log"
	"github.com/nuhsistemas/scankiosk/internal/app"
	"github.com/nuhsistemas/scankiosk/plugins/configwatcher"
)

func newRunCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the kiosk and serve every enabled input channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &c.cfg
			if err := cfg.Validate(); err != nil {
				return err
			}

			logCfg := *cfg
			logCfg.PIN = "*****"
			c.log.Info().Interface("config", logCfg).Msg("configuration")

			logger := logAdapter.NewZerologAdapterWithLogger(c.log)
			client := c.newClient(logger)
			history := fs.NewHistoryFile(cfg.StateDir)
			presenter := console.NewPresenter(os.Stdout, func() string { return client.Station().BaseURL })

			var arbOpts []app.ArbitratorOption
			kioskOpts := []app.KioskOption{
				configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
			}
			if cfg.EnableKeyboard {
				kioskOpts = append(kioskOpts, app.WithSource(device.NewKeyboardSource(os.Stdin, logger)))
			}
			if cfg.EnableQR {
				kioskOpts = append(kioskOpts, app.WithSource(device.NewQRSource(cfg.QRDevice, logger)))
			}
			if cfg.EnableNFC {
				session := device.NewNFCSession(cfg.NFCDevice)
				arbOpts = append(arbOpts, app.WithCycleEnd(func() { _ = session.Cancel() }))
				kioskOpts = append(kioskOpts, app.WithSource(device.NewNFCSource(session, logger)))
			}
			if cfg.EnableFacial {
				kioskOpts = append(kioskOpts, app.WithSource(device.NewFacialDirSource(cfg.FacialDir, logger)))
			}

			arb := app.NewArbitrator(app.ArbitratorConfig{
				Cooldown:      cfg.Cooldown,
				ResultTimeout: cfg.ResultTimeout,
			}, client, history, presenter, logger, arbOpts...)

			k := app.NewKiosk(app.KioskConfig{
				ConfigPath: c.cfgFile,
				Station:    cfg.Station(),
				SetStation: client.SetStation,
			}, arb, logger, kioskOpts...)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := k.Start(ctx); err != nil {
				return fmt.Errorf("start kiosk: %w", err)
			}

			select {
			case <-sigCh:
				c.log.Info().Msg("received signal, stopping...")
			case <-k.Done():
				c.log.Info().Msg("all input sources closed")
			}

			if err := k.Stop(); err != nil {
				return fmt.Errorf("stop kiosk: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.DurationVar(&c.cfg.ResultTimeout, "result-timeout", c.cfg.ResultTimeout, "how long a result stays on screen")
	f.DurationVar(&c.cfg.Cooldown, "cooldown", c.cfg.Cooldown, "minimum gap between two accepted scans")
	f.BoolVar(&c.cfg.EnableKeyboard, "keyboard", c.cfg.EnableKeyboard, "read typed codes from stdin")
	f.BoolVar(&c.cfg.EnableQR, "qr", c.cfg.EnableQR, "read codes from a QR scanner device")
	f.StringVar(&c.cfg.QRDevice, "qr-device", c.cfg.QRDevice, "QR scanner device path")
	f.BoolVar(&c.cfg.EnableNFC, "nfc", c.cfg.EnableNFC, "read tags from an NFC reader")
	f.StringVar(&c.cfg.NFCDevice, "nfc-device", c.cfg.NFCDevice, "NFC reader device path")
	f.BoolVar(&c.cfg.EnableFacial, "facial", c.cfg.EnableFacial, "validate camera captures")
	f.StringVar(&c.cfg.FacialDir, "facial-dir", c.cfg.FacialDir, "directory the camera app writes captures to")
	f.BoolVar(&c.cfg.SendDeviceInfo, "device-info", c.cfg.SendDeviceInfo, "attach host information to validation requests")
	return cmd
}
