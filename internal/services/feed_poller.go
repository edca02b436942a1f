package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/models"
	"github.com/SammyBolger/NBA-Analytics/internal/predictions"
)

// FeedSource is the part of the feed client the poller reads from.
type FeedSource interface {
	TodayGames(ctx context.Context) ([]models.Game, error)
	Calendar(ctx context.Context) (models.CalendarResponse, error)
	ModelOdds(ctx context.Context) ([]models.ModelOdds, error)
}

// SnapshotCache persists snapshots across restarts. *CacheService satisfies it.
type SnapshotCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// PollerOptions are the refresh cadences of the poller.
type PollerOptions struct {
	TodayInterval time.Duration
	OddsInterval  time.Duration
	CalendarTTL   time.Duration
}

// FeedPoller keeps today's games, the model odds and the calendar window
// fresh. Reads are served from its snapshots, never from the feed directly.
type FeedPoller struct {
	source FeedSource
	cache  SnapshotCache
	logger *logrus.Logger
	opts   PollerOptions
	cron   *cron.Cron

	today    *Snapshot[[]models.Game]
	odds     *Snapshot[[]models.ModelOdds]
	calendar *Snapshot[models.CalendarResponse]

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewFeedPoller(source FeedSource, cache SnapshotCache, logger *logrus.Logger, opts PollerOptions) *FeedPoller {
	if opts.TodayInterval <= 0 {
		opts.TodayInterval = 15 * time.Second
	}
	if opts.OddsInterval <= 0 {
		opts.OddsInterval = 30 * time.Second
	}
	if opts.CalendarTTL <= 0 {
		opts.CalendarTTL = 10 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &FeedPoller{
		source:   source,
		cache:    cache,
		logger:   logger,
		opts:     opts,
		cron:     cron.New(),
		today:    NewSnapshot[[]models.Game](),
		odds:     NewSnapshot[[]models.ModelOdds](),
		calendar: NewSnapshot[models.CalendarResponse](),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start schedules the refresh jobs and kicks off a first fetch of each.
func (p *FeedPoller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("feed poller is already running")
	}

	p.warmFromCache()

	_, err := p.cron.AddFunc(fmt.Sprintf("@every %s", p.opts.TodayInterval), func() {
		_ = p.RefreshToday(p.ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule today refresh: %w", err)
	}

	_, err = p.cron.AddFunc(fmt.Sprintf("@every %s", p.opts.OddsInterval), func() {
		_ = p.RefreshOdds(p.ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule odds refresh: %w", err)
	}

	p.cron.Start()
	p.isRunning = true

	go func() {
		_ = p.RefreshToday(p.ctx)
		_ = p.RefreshOdds(p.ctx)
		_ = p.RefreshCalendar(p.ctx)
	}()

	p.logger.WithFields(logrus.Fields{
		"today_interval": p.opts.TodayInterval.String(),
		"odds_interval":  p.opts.OddsInterval.String(),
	}).Info("Feed poller started")
	return nil
}

// Stop cancels in-flight fetches and waits for running jobs to return.
func (p *FeedPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancel()
	if !p.isRunning {
		return
	}

	ctx := p.cron.Stop()
	<-ctx.Done()

	p.isRunning = false
	p.logger.Info("Feed poller stopped")
}

// RefreshToday fetches today's games into the snapshot.
func (p *FeedPoller) RefreshToday(ctx context.Context) error {
	return refresh(ctx, p, "today", p.today, p.source.TodayGames, TodayGamesCacheKey())
}

// RefreshOdds fetches model odds into the snapshot, filling derived fields.
func (p *FeedPoller) RefreshOdds(ctx context.Context) error {
	fetch := func(ctx context.Context) ([]models.ModelOdds, error) {
		records, err := p.source.ModelOdds(ctx)
		if err != nil {
			return nil, err
		}
		for i := range records {
			if !records[i].Valid() {
				p.logger.WithField("game_id", records[i].GameID).Debug("Win probabilities do not sum to one")
			}
			records[i] = predictions.Enrich(records[i])
		}
		return records, nil
	}
	return refresh(ctx, p, "odds", p.odds, fetch, ModelOddsCacheKey())
}

// RefreshCalendar fetches the full calendar window into the snapshot.
func (p *FeedPoller) RefreshCalendar(ctx context.Context) error {
	return refresh(ctx, p, "calendar", p.calendar, p.source.Calendar, CalendarCacheKey())
}

// Today returns the latest games snapshot.
func (p *FeedPoller) Today() ([]models.Game, bool) {
	return p.today.Get()
}

// Odds returns the latest model odds snapshot.
func (p *FeedPoller) Odds() ([]models.ModelOdds, bool) {
	return p.odds.Get()
}

// Calendar returns the calendar snapshot, refetching it first when it is
// older than the configured TTL. A failed refetch serves the stale copy.
func (p *FeedPoller) Calendar(ctx context.Context) (models.CalendarResponse, error) {
	age := p.calendar.Age()
	if age < 0 || age > p.opts.CalendarTTL {
		if err := p.RefreshCalendar(ctx); err != nil {
			if cal, ok := p.calendar.Get(); ok {
				return cal, nil
			}
			return models.CalendarResponse{}, err
		}
	}
	cal, _ := p.calendar.Get()
	return cal, nil
}

// FeedStatus is the freshness of every snapshot.
type FeedStatus struct {
	Today    SnapshotStatus `json:"today"`
	Odds     SnapshotStatus `json:"odds"`
	Calendar SnapshotStatus `json:"calendar"`
}

func (p *FeedPoller) Status() FeedStatus {
	return FeedStatus{
		Today:    p.today.Status(),
		Odds:     p.odds.Status(),
		Calendar: p.calendar.Status(),
	}
}

func refresh[T any](ctx context.Context, p *FeedPoller, name string, snap *Snapshot[T], fetch func(context.Context) (T, error), cacheKey string) error {
	seq := snap.Begin()
	log := p.logger.WithFields(logrus.Fields{"snapshot": name, "seq": seq})

	value, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return err
		}
		snap.Fail(seq, err)
		log.WithError(err).Warn("Feed refresh failed, keeping previous snapshot")
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !snap.Commit(seq, value) {
		log.Debug("Dropped out-of-order feed response")
		return nil
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, cacheKey, value, 0); err != nil {
			log.WithError(err).Warn("Failed to cache snapshot")
		}
	}
	return nil
}

func (p *FeedPoller) warmFromCache() {
	if p.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(p.ctx, 2*time.Second)
	defer cancel()

	var games []models.Game
	if err := p.cache.Get(ctx, TodayGamesCacheKey(), &games); err == nil {
		p.today.Commit(p.today.Begin(), games)
	}
	var odds []models.ModelOdds
	if err := p.cache.Get(ctx, ModelOddsCacheKey(), &odds); err == nil {
		p.odds.Commit(p.odds.Begin(), odds)
	}
	var cal models.CalendarResponse
	if err := p.cache.Get(ctx, CalendarCacheKey(), &cal); err == nil {
		p.calendar.Commit(p.calendar.Begin(), cal)
	}
}
