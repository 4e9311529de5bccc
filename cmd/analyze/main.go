// analyze runs statistical analysis over a batch of match files and prints
// a per-player summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/evaluator/pipcount"
	"github.com/domino14/bgstats/gameanalysis"
	"github.com/domino14/bgstats/matchio"
)

func main() {
	threads := flag.Int("threads", runtime.NumCPU(), "matches analysed at once")
	level := flag.Float64("confidence", 95, "confidence level of the error rate interval, in percent")
	histogram := flag.Bool("histogram", false, "draw each player's per-game error rates")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	cfg := config.DefaultConfig()
	if err := cfg.Load(nil); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.AdjustRelativePaths(filepath.Dir(ex))
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze [flags] match-file...")
		os.Exit(2)
	}

	ac, err := gameanalysis.AnalysisConfigFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bad analysis settings")
	}
	ev, err := pipcount.FromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create evaluator")
	}
	an := gameanalysis.New(cfg, ac, ev)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := make([]*gameanalysis.BatchMatchResult, len(files))
	g := errgroup.Group{}
	g.SetLimit(max(*threads, 1))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			mr := &gameanalysis.BatchMatchResult{Source: f}
			results[i] = mr
			m, err := matchio.Load(f)
			if err != nil {
				mr.LoadError = err
				log.Err(err).Str("file", f).Msg("could not load match")
				return nil
			}
			mr.MatchInfo = m.Players[0] + " vs " + m.Players[1]
			if err := an.AnalyzeMatch(ctx, m); err != nil {
				mr.AnalysisErr = err
				log.Err(err).Str("file", f).Msg("analysis failed")
				return ctx.Err()
			}
			mr.Match = m
			log.Debug().Str("file", f).Msg("analysed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("interrupted")
	}

	batch := gameanalysis.NewBatchAnalysisResult()
	for _, mr := range results {
		batch.AddMatchResult(mr)
	}
	batch.CalculateAverages(*level)

	fmt.Printf("%d matches, %d analysed, %d failed\n\n",
		batch.TotalMatches, batch.SuccessfulMatches, batch.FailedMatches)
	fmt.Printf("%-20s %7s %5s %9s %19s  %s\n", "Player", "Matches", "Games", "Error", "Interval", "Rating")
	for _, name := range batch.PlayerNames() {
		ps := batch.PlayerStats[name]
		fmt.Printf("%-20s %7d %5d %+9.4f [%+8.4f, %+8.4f]  %s\n", name,
			ps.MatchesPlayed, ps.GamesPlayed, -ps.AvgErrorRate,
			-ps.ErrorRateHigh, -ps.ErrorRateLow, ps.Rating)
	}
	if *histogram {
		for _, name := range batch.PlayerNames() {
			fmt.Printf("\n%s, error per move (millipoints)\n", name)
			if err := batch.FprintHistogram(os.Stdout, name, 10); err != nil {
				log.Err(err).Msg("histogram")
			}
		}
	}
}
