package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/evaluator"
	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/gameanalysis"
	"github.com/domino14/bgstats/matchio"
	"github.com/domino14/bgstats/store"
)

// AnalysisWorker answers analysis jobs received over NATS.
type AnalysisWorker struct {
	config   *WorkerConfig
	analyzer *gameanalysis.Analyzer
	db       *store.Store
}

// NewAnalysisWorker creates a new worker. ev does the evaluations.
func NewAnalysisWorker(cfg *WorkerConfig, ev evaluator.Evaluator) (*AnalysisWorker, error) {
	analysisConfig, err := gameanalysis.AnalysisConfigFromConfig(cfg.Config)
	if err != nil {
		return nil, err
	}
	w := &AnalysisWorker{
		config:   cfg,
		analyzer: gameanalysis.New(cfg.Config, analysisConfig, ev),
	}
	if cfg.DBPath != "" {
		if w.db, err = store.Open(cfg.DBPath); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Close releases the worker's database.
func (w *AnalysisWorker) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// Run subscribes to the job subject and answers jobs until ctx is done.
func (w *AnalysisWorker) Run(ctx context.Context) error {
	nc, err := nats.Connect(w.config.NatsURL)
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}
	defer nc.Close()

	log.Info().
		Str("nats-url", w.config.NatsURL).
		Str("subject", w.config.Subject).
		Str("queue", w.config.Queue).
		Msg("starting analysis worker")

	sub, err := nc.QueueSubscribe(w.config.Subject, w.config.Queue, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Msg("received job")
		data := w.Handle(ctx, m.Data)
		err := retry.Do(
			func() error { return m.Respond(data) },
			retry.Attempts(3),
			retry.Context(ctx),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				log.Err(err).Uint("n", n).Msg("respond-failed-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			log.Err(err).Msg("could not send result")
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", w.config.Subject, err)
	}
	if err := nc.Flush(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("worker shutting down")
	if err := sub.Drain(); err != nil {
		log.Err(err).Msg("drain failed")
	}
	return ctx.Err()
}

// Handle decodes a job, processes it and encodes the result. It never
// fails; errors are reported in the result.
func (w *AnalysisWorker) Handle(ctx context.Context, data []byte) []byte {
	var job Job
	var res *Result
	if err := json.Unmarshal(data, &job); err != nil {
		res = &Result{Error: fmt.Sprintf("bad job: %v", err)}
	} else {
		res = w.Process(ctx, &job)
	}
	out, err := json.Marshal(res)
	if err != nil {
		// only possible if a statistic isn't a number
		out, _ = json.Marshal(&Result{JobID: job.JobID, Error: err.Error()})
	}
	return out
}

// Process analyses the match in job.
func (w *AnalysisWorker) Process(ctx context.Context, job *Job) *Result {
	res := &Result{JobID: job.JobID}
	logger := log.With().Str("job-id", job.JobID).Logger()

	m, err := matchio.Unmarshal(job.Match, matchio.FormatJSON)
	if err != nil {
		res.Error = fmt.Sprintf("bad match: %v", err)
		return res
	}
	res.Players = m.Players

	ctx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	logger.Info().Int("games", len(m.Games)).
		Int("decisions", gameanalysis.NumberMovesMatch(m)).Msg("starting analysis")
	if err := w.analyzer.AnalyzeMatch(ctx, m); err != nil {
		logger.Err(err).Msg("analysis failed")
		res.Error = err.Error()
		return res
	}

	res.Stats = m.Stats
	for _, g := range m.Games {
		if gi, err := g.Info(); err == nil {
			res.Games = append(res.Games, gi.Stats)
		}
	}
	title := "Match statistics"
	if m.Money() {
		title = "Session statistics"
	}
	res.Report = gameanalysis.NewReport(title, &m.Stats, m.Players, m.MatchTo).RenderText()

	if job.Store {
		res.StoredMatchID, err = w.store(ctx, m)
		if err != nil {
			logger.Err(err).Msg("could not store match")
			res.Error = err.Error()
		}
	}
	logger.Info().Msg("job completed successfully")
	return res
}

func (w *AnalysisWorker) store(ctx context.Context, m *game.Match) (int64, error) {
	if w.db == nil {
		return 0, errors.New("this worker has no database")
	}
	return w.db.AddMatch(ctx, m, false)
}
