package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hitblow/internal/bench"
)

var (
	benchJSON  bool
	benchQuiet bool

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Play every secret of the configured space and report rounds",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
)

func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&benchJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&benchQuiet, "quiet", "q", false, "no progress bar")
}

func runBench(cmd *cobra.Command, args []string) error {
	space, sel, err := cfg.Solver()
	if err != nil {
		return err
	}
	log.Info().Int("length", space.Len()).Int("symbols", space.Symbols()).
		Int("secrets", space.Size()).Str("pool", sel.Pool().String()).Msg("bench starting")

	var progress func(int)
	if !benchQuiet {
		bar := progressbar.Default(int64(space.Size()), "secrets")
		defer bar.Finish()
		progress = func(done int) { _ = bar.Set(done) }
	}

	start := time.Now()
	rep, err := bench.Run(space, sel, progress)
	if err != nil {
		return err
	}
	took := time.Since(start)

	out := cmd.OutOrStdout()
	if benchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprintf(out, "\n%d secrets in %s\n", rep.Secrets, took.Round(time.Millisecond))
	fmt.Fprintf(out, "rounds until one candidate: max %d, avg %.3f\n", rep.MaxRounds, rep.AverageRounds())
	printHistogram(out, rep.Rounds)
	fmt.Fprintf(out, "guesses until solved:       max %d, avg %.3f\n", rep.MaxGuesses, rep.AverageGuesses())
	printHistogram(out, rep.Guesses)

	hardest := make([]string, 0, len(rep.Hardest))
	for _, c := range rep.Hardest {
		hardest = append(hardest, c.String())
	}
	if len(hardest) > 10 {
		hardest = append(hardest[:10], fmt.Sprintf("(+%d more)", len(rep.Hardest)-10))
	}
	fmt.Fprintf(out, "hardest: %s\n", strings.Join(hardest, " "))
	return nil
}

func printHistogram(out io.Writer, h map[int]int) {
	keys := make([]int, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %2d: %d\n", k, h[k])
	}
}
