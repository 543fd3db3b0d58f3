// main.go
//
// hitblow command line.
//   hitblow [serve]   run the HTTP solver (default)
//   hitblow bench     play every secret and report the worst case
//
// Configuration comes from the environment (and .env); flags override it.

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hitblow/internal/config"
)

var (
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "hitblow",
		Short: "Minimax solver for Hit and Blow",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zerolog.SetGlobalLevel(lvl)
			} else {
				log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
			}
		},
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	cfg = config.Load()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "zerolog level (debug, info, warn, error)")
	pf.IntVar(&cfg.CodeLength, "length", cfg.CodeLength, "positions per code")
	pf.IntVar(&cfg.Symbols, "symbols", cfg.Symbols, "alphabet size")
	pf.StringVar(&cfg.GuessPool, "pool", cfg.GuessPool, "guess pool: full or candidates")
	pf.IntVar(&cfg.Workers, "workers", cfg.Workers, "minimax workers (0 = GOMAXPROCS)")

	addServeFlags(rootCmd)
	addServeFlags(serveCmd)
	addBenchFlags(benchCmd)
	rootCmd.AddCommand(serveCmd, benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
