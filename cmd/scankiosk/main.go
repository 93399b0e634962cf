package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	httpAdapter "github.com/nuhsistemas/scankiosk/internal/adapters/http"
	"github.com/nuhsistemas/scankiosk/internal/cliconfig"
	"github.com/nuhsistemas/scankiosk/internal/domain"
	"github.com/nuhsistemas/scankiosk/internal/ports"
)

const helpDescription = `
Access-control kiosk agent. Reads credentials from the keyboard, a QR
scanner, an NFC reader and a facial capture directory, validates each one
against the access server and keeps a local history of every attempt.

Only one credential is validated at a time. Scans that arrive while a
validation is running or a result is on screen are ignored.
`

var exampleUsage = strings.TrimSpace(`
  scankiosk login --url https://acesso.example.com --pin 198
  scankiosk run --nfc --nfc-device /dev/ttyUSB0
  scankiosk submit 0005558680561892 --channel qrcode
  scankiosk history export --out ~/historico.csv
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration shared by every subcommand.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	cfgFile string
	envFile string
	log     zerolog.Logger
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), log: cliconfig.Logger()}

	root := &cobra.Command{
		Use:           "scankiosk",
		Short:         "Access-control kiosk agent",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to settings file (default: $HOME/.scankiosk/config.toml)")
	pf.StringVar(&c.envFile, "env-file", ".env", "dotenv file with SCANKIOSK_* variables")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&c.cfg.BaseURL, "url", c.cfg.BaseURL, "access server base URL")
	pf.StringVar(&c.cfg.PIN, "pin", c.cfg.PIN, "station PIN")
	pf.StringVar(&c.cfg.Sector, "sector", c.cfg.Sector, "station sector (resolved at login)")
	pf.StringVar(&c.cfg.StateDir, "state-dir", c.cfg.StateDir, "directory for history.json (default: $HOME/.scankiosk)")
	pf.DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "HTTP timeout")

	root.AddCommand(
		newRunCmd(c),
		newLoginCmd(c),
		newSubmitCmd(c),
		newHistoryCmd(c),
		newLookupCmd(c),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("scankiosk")
		os.Exit(1)
	}
}

// load resolves the configuration: flags over environment over settings file.
func (c *cli) load(cmd *cobra.Command) error {
	if err := cliconfig.LoadDotEnv(c.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	c.cfgFile = c.cfgPath
	if c.cfgFile == "" {
		c.cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if c.cfgFile != "" && cliconfig.FileExists(c.cfgFile) {
		fc, err := cliconfig.LoadFileConfig(c.cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := cliconfig.SetLogLevel(c.cfg.LogLevel); err != nil {
		return err
	}
	c.log = cliconfig.Logger()
	return nil
}

// newClient builds the access server client for the configured station.
func (c *cli) newClient(logger ports.Logger) *httpAdapter.Client {
	var opts []httpAdapter.Option
	if c.cfg.SendDeviceInfo {
		info := httpAdapter.CollectDeviceInfo(getVersion())
		opts = append(opts, httpAdapter.WithDeviceInfo(func() domain.DeviceInfo { return info }))
	}
	return httpAdapter.NewClient(&http.Client{Timeout: c.cfg.HTTPTimeout}, logger, c.cfg.Station(), opts...)
}
