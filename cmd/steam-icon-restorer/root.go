package main

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/cobrax/topics"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/config"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/logging"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/restore"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/ui"
)

// Set via ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

//go:embed docs
var docsFS embed.FS

var (
	verbosity   int
	cfgFile     string
	installPath string
	account     string
	useQR       bool
	plainOutput bool

	rootCmd = &cobra.Command{
		Use:   "steam-icon-restorer",
		Short: MsgRootShort,
		Long:  MsgRootLong,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRestore,
	}
)

// Execute runs the root command. Called by main.main().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", MsgFlagConfig)

	rootCmd.Flags().StringVarP(&installPath, "path", "p", "", MsgFlagPath)
	rootCmd.Flags().StringVarP(&account, "user", "u", "", MsgFlagUser)
	rootCmd.Flags().BoolVar(&useQR, "qr", false, MsgFlagQR)
	rootCmd.Flags().BoolVar(&plainOutput, "plain", false, MsgFlagPlain)

	rootCmd.AddCommand(versionCmd)

	if manager, err := topics.Load(docsFS, "docs", &topics.GlamourRenderer{}); err == nil {
		manager.Attach(rootCmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: MsgVersionShort,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("steam-icon-restorer version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Flags win over config file and environment.
	if cmd.Flags().Changed("path") {
		cfg.InstallPath = installPath
	}
	if cmd.Flags().Changed("user") {
		cfg.Account = account
	}
	if cmd.Flags().Changed("qr") {
		cfg.UseQR = useQR
	}
	if cmd.Flags().Changed("plain") {
		cfg.PlainOutput = plainOutput
	}

	renderer := selectRenderer(cfg.PlainOutput)

	opts := restore.Options{
		InstallPath:   cfg.InstallPath,
		Account:       cfg.Account,
		UseQR:         cfg.UseQR,
		Renderer:      renderer,
		Authenticator: ui.TerminalPrompter{},
		Observer:      ui.ObserverAdapter{Renderer: renderer},
	}

	if !cfg.UseQR {
		opts.Password = os.Getenv(config.EnvPassword)
		if opts.Password == "" && cfg.Account != "" {
			opts.Password, err = ui.PromptPassword(cfg.Account)
			if err != nil {
				return err
			}
		}
	}

	report, err := restore.Run(cmd.Context(), opts)
	if err != nil {
		renderer.RenderError(err)
		return err
	}

	renderer.RenderSummary(report)
	return nil
}

func selectRenderer(plain bool) ui.Renderer {
	if plain || !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ui.NewPlainRenderer(os.Stdout)
	}
	return ui.NewTerminalRenderer()
}
