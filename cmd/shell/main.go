package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/shell"
)

var (
	GitVersion string
)

//go:embed bgstats.txt
var banner string

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("debug logging is on")
}

func writeMemProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Err(err).Msg("could not create memory profile")
		return
	}
	defer f.Close()
	memstats := &runtime.MemStats{}
	runtime.ReadMemStats(memstats)
	log.Info().Interface("memstats", memstats).Msg("memory-stats")
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Err(err).Msg("could not write memory profile")
		return
	}
	log.Info().Str("path", path).Msg("wrote memory profile")
}

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Println(banner)
	fmt.Println(GitVersion)

	cfg := config.DefaultConfig()
	args := os.Args[1:]
	if err := cfg.Load(args); err != nil {
		panic(err)
	}
	cfg.AdjustRelativePaths(exPath)
	setupLogging(cfg.GetBool(config.ConfigDebug))
	log.Info().Str("exec-path", exPath).Interface("config", cfg.SanitizedSettings()).Msg("starting shell")

	if path := cfg.GetString(config.ConfigCPUProfile); path != "" {
		f, err := os.Create(path)
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	sc := shell.NewShellController(cfg, exPath, GitVersion)

	// Ctrl-C while analysing stops the analysis; otherwise it quits.
	quit := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for s := range sig {
			if s == syscall.SIGINT && sc.Interrupt() {
				continue
			}
			log.Info().Msg("got quit signal...")
			close(quit)
			return
		}
	}()

	// --key=value arguments are settings; anything else is a command
	var cmdArgs []string
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			cmdArgs = append(cmdArgs, a)
		}
	}
	if line := strings.TrimSpace(strings.Join(cmdArgs, " ")); line == "" {
		go sc.Loop(sig)
	} else {
		sc.Execute(sig, line)
		sig <- syscall.SIGINT
	}

	<-quit

	if path := cfg.GetString(config.ConfigMemProfile); path != "" {
		writeMemProfile(path)
	}
	sc.Cleanup()
	log.Info().Msg("shell shutting down")
}
