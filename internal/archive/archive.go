// SPDX-License-Identifier: MIT

// Package archive writes an insert-only audit trail of session events
// and served chain steps to MongoDB. Archiving is optional; a nil
// *Archive is a valid no-op sink so callers never branch on it.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/config"
	"github.com/chainforge/optionsim/internal/log"
)

// SessionEvent records one lifecycle transition.
type SessionEvent struct {
	SessionID string    `bson:"session_id"`
	Event     string    `bson:"event"`
	State     string    `bson:"state"`
	Step      int       `bson:"step"`
	Timestamp time.Time `bson:"timestamp"`
}

// ChainStep records one served simulation step.
type ChainStep struct {
	SessionID       string    `bson:"session_id"`
	Step            int       `bson:"step"`
	Method          string    `bson:"method"`
	UnderlyingPrice float64   `bson:"underlying_price"`
	Contracts       int       `bson:"contracts"`
	Timestamp       time.Time `bson:"timestamp"`
}

// Archive is the MongoDB sink. Writes are fire-and-forget from the
// caller's point of view; failures are logged, never surfaced.
type Archive struct {
	steps   *mongo.Collection
	events  *mongo.Collection
	timeout time.Duration
	logger  zerolog.Logger
}

// Connect opens the archive from the configuration. An empty URI
// returns (nil, nil), disabling archiving.
func Connect(ctx context.Context, cfg config.Mongo) (*Archive, error) {
	if cfg.URI == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "mongodb connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "mongodb ping")
	}
	db := client.Database(cfg.Database)
	return &Archive{
		steps:   db.Collection(cfg.StepsCollection),
		events:  db.Collection(cfg.EventsCollection),
		timeout: cfg.Timeout,
		logger:  log.WithComponent("archive"),
	}, nil
}

// SaveSessionEvent archives one lifecycle transition.
func (a *Archive) SaveSessionEvent(ctx context.Context, id uuid.UUID, event, state string, step int) {
	if a == nil {
		return
	}
	a.insert(ctx, a.events, SessionEvent{
		SessionID: id.String(),
		Event:     event,
		State:     state,
		Step:      step,
		Timestamp: time.Now().UTC(),
	})
}

// SaveChainStep archives one served step.
func (a *Archive) SaveChainStep(ctx context.Context, id uuid.UUID, step int, method string, price float64, contracts int) {
	if a == nil {
		return
	}
	a.insert(ctx, a.steps, ChainStep{
		SessionID:       id.String(),
		Step:            step,
		Method:          method,
		UnderlyingPrice: price,
		Contracts:       contracts,
		Timestamp:       time.Now().UTC(),
	})
}

func (a *Archive) insert(ctx context.Context, coll *mongo.Collection, doc any) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		a.logger.Warn().Err(err).Str("collection", coll.Name()).
			Msg("archive insert failed")
	}
}
