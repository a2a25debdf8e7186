package commands

import (
	"context"
	"errors"
	"fmt"
	"instauto/internal/components/serviceutil"
	"instauto/internal/components/telemetry"
	"instauto/pkg/configutil"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// defaults to .instauto.save
	SaveFile string `json:"save_file"`
	// one of the known device profiles, a random one is picked when empty
	Device    string           `json:"device"`
	Debug     bool             `json:"debug"`
	Timeout   int              `json:"timeout_seconds"`
	Telemetry telemetry.Config `json:"telemetry"`
}

const defaultSaveFile = ".instauto.save"

var (
	configName string
	saveFile   string
	rawOutput  bool
	dumpDir    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configName, "config", "instauto.json5", "The config file, looked up from the working directory upwards.")
	rootCmd.PersistentFlags().StringVar(&saveFile, "save", "", "The session file, overrides save_file of the config.")
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "Print response bodies as they were received.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump", "", "Write every request and response to this directory, credentials are redacted.")
}

var rootCmd = &cobra.Command{
	Use:   "instauto",
	Short: "instauto is a CLI for automating an account through the private mobile API.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadRecursively[Config](configName)
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if saveFile != "" {
			cfg.SaveFile = saveFile
		}
		if cfg.SaveFile == "" {
			cfg.SaveFile = defaultSaveFile
		}

		telemetry.InitSlog(cfg.Debug)
		tel, err := telemetry.Setup(cmd.Context(), "instauto", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}

		g := &globals{
			config:    cfg,
			telemetry: tel,
		}
		if dumpDir != "" {
			g.dump, err = telemetry.NewFilesystemOutput(dumpDir)
			if err != nil {
				serviceutil.Fatal("failed to create dump directory", err)
			}
		}
		cmd.SetContext(setGlobals(cmd.Context(), g))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())
		if g.client != nil {
			err := g.client.Save(g.config.SaveFile)
			if err != nil {
				slog.Warn("failed to save session", "path", g.config.SaveFile, "err", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := g.telemetry.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
