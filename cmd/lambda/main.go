package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/evaluator/pipcount"
	"github.com/domino14/bgstats/worker"
)

var cfg *config.Config
var nc *nats.Conn

const HardTimeLimit = 180 // max time per match in seconds

// LambdaEvent asks for one match to be analysed. If ReplyChannel is set the
// result is also sent there over NATS.
type LambdaEvent struct {
	JobID        string          `json:"job-id"`
	Match        json.RawMessage `json:"match"`
	ReplyChannel string          `json:"reply-channel"`
}

func HandleRequest(ctx context.Context, evt LambdaEvent) (string, error) {
	logger := log.With().
		Str("jobID", evt.JobID).
		Logger()

	wc := worker.DefaultWorkerConfig(cfg)
	wc.JobTimeout = HardTimeLimit * time.Second
	ev, err := pipcount.FromConfig(cfg)
	if err != nil {
		return "", err
	}
	w, err := worker.NewAnalysisWorker(wc, ev)
	if err != nil {
		return "", err
	}
	defer w.Close()

	res := w.Process(ctx, &worker.Job{JobID: evt.JobID, Match: evt.Match})
	data, err := json.Marshal(res)
	if err != nil {
		return "", err
	}

	if evt.ReplyChannel != "" {
		if nc == nil {
			return "", errors.New("no nats connection for reply channel")
		}
		logger.Info().Msg("analysis-done-sending-via-nats")
		err = retry.Do(
			func() error {
				// We're just waiting for an acknowledgement. The actual
				// data doesn't matter.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.Context(ctx),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).
					Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("sending-result-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	if res.Error != "" {
		return string(data), errors.New(res.Error)
	}
	return string(data), nil
}

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg = config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded config")
	cfg.AdjustRelativePaths(exPath)
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	nc, err = nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
	}

	lambda.Start(HandleRequest)
}
