// Package schedule keeps the trailing window of each trace warm so the
// first paint after an idle period is answered from the cache.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/wxcharts/chartfeed/internal/feed"
	"github.com/wxcharts/chartfeed/internal/series"
)

// Prewarmer periodically re-requests the trailing display window of every
// trace. Requests go through the normal section loader, so only segments
// missing from the cache are fetched.
type Prewarmer struct {
	ctx    context.Context
	feeds  []*feed.Fetcher
	window time.Duration
	logger *logrus.Logger
	cron   *cron.Cron
}

func NewPrewarmer(ctx context.Context, feeds []*feed.Fetcher, window time.Duration, logger *logrus.Logger) *Prewarmer {
	return &Prewarmer{
		ctx:    ctx,
		feeds:  feeds,
		window: window,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start the prewarmer.
func (p *Prewarmer) Start() error {
	// Refresh the trailing window every 5 minutes
	_, err := p.cron.AddFunc("*/5 * * * *", p.prewarm)
	if err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// prewarm requests the trailing window for every trace and waits for the
// sections to settle.
func (p *Prewarmer) prewarm() {
	end := time.Now().UnixMilli()
	iv, err := series.NewInterval(end-p.window.Milliseconds(), end)
	if err != nil {
		return
	}

	for _, f := range p.feeds {
		_, fut := f.RequestWide(iv)
		if fut == nil {
			// already warm
			continue
		}
		select {
		case <-fut.Done():
			if _, err := fut.Result(); err != nil {
				p.logger.WithField("trace", f.Name()).WithError(err).Warn("Prewarm failed")
			}
		case <-p.ctx.Done():
			return
		case <-time.After(2 * time.Minute):
			p.logger.WithField("trace", f.Name()).Warn("Prewarm timed out")
		}
	}
}

// Stop the prewarmer.
func (p *Prewarmer) Stop() {
	p.cron.Stop()
}
