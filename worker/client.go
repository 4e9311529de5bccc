package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/matchio"
)

// Client sends matches to analysis workers.
type Client struct {
	nc      *nats.Conn
	subject string
}

// NewClient creates a client publishing on subject.
func NewClient(nc *nats.Conn, subject string) *Client {
	return &Client{nc: nc, subject: subject}
}

// NewJob encodes m as a job.
func NewJob(id string, m *game.Match, store bool) (*Job, error) {
	data, err := matchio.Marshal(m, matchio.FormatJSON)
	if err != nil {
		return nil, err
	}
	return &Job{JobID: id, Match: data, Store: store}, nil
}

// RequestAnalysis sends a job and waits for its result. ctx bounds the
// wait.
func (c *Client) RequestAnalysis(ctx context.Context, job *Job) (*Result, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	msg, err := c.nc.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		return nil, fmt.Errorf("requesting analysis: %w", err)
	}
	var res Result
	if err := json.Unmarshal(msg.Data, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return &res, errors.New("worker returned: " + res.Error)
	}
	return &res, nil
}
