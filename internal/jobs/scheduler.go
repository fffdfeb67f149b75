// Package jobs runs periodic maintenance in the background of the server.
// Currently the only job purges expired idempotency records.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/repo"
)

// Scheduler owns the cron runner.
type Scheduler struct {
	c  *cron.Cron
	db *gorm.DB
}

// New builds a scheduler that purges expired idempotency rows on spec
// (standard cron syntax or descriptors such as "@hourly").
func New(db *gorm.DB, spec string) (*Scheduler, error) {
	s := &Scheduler{
		c:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		db: db,
	}
	if _, err := s.c.AddFunc(spec, s.purge); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the jobs in a background goroutine.
func (s *Scheduler) Start() {
	s.c.Start()
	log.Info().Int("jobs", len(s.c.Entries())).Msg("scheduler started")
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.c.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := PurgeExpired(ctx, s.db)
	if err != nil {
		log.Error().Err(err).Msg("idempotency purge failed")
		return
	}
	log.Debug().Int64("deleted", n).Msg("idempotency purge")
}

// PurgeExpired deletes idempotency records that are past their expiry.
func PurgeExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.PurgeIdempotency(ctx, db, time.Now().UTC())
}
