// Package scheduler runs the periodic locale reload so edits made to the
// translation files outside the service reach the live taxonomy.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/metrics"
	"freelance-hub/internal/pkg/logger"
)

// SpecOff disables the reload job.
const SpecOff = "off"

type Reloadable interface {
	Reload(ctx context.Context) (bool, error)
	Snapshot() *taxonomy.Snapshot
}

type ReloadNotifier interface {
	TaxonomyReloaded(revision int64)
}

type Reloader struct {
	cron     *cron.Cron
	store    Reloadable
	notifier ReloadNotifier
	logger   logger.Logger
	spec     string
}

func NewReloader(store Reloadable, notifier ReloadNotifier, spec string, l logger.Logger) *Reloader {
	l = logger.OrNop(l)
	cl := cronLogger{l: l}
	return &Reloader{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		store:    store,
		notifier: notifier,
		logger:   l,
		spec:     strings.TrimSpace(spec),
	}
}

func (r *Reloader) Enabled() bool {
	return r.spec != "" && !strings.EqualFold(r.spec, SpecOff)
}

// Start registers the job and starts the cron loop. With the job disabled
// it does nothing.
func (r *Reloader) Start(ctx context.Context) error {
	if !r.Enabled() {
		r.logger.Info("locale reload disabled", nil)
		return nil
	}
	if _, err := r.cron.AddFunc(r.spec, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("locale reload spec %q: %w", r.spec, err)
	}
	r.cron.Start()
	r.logger.Info("locale reload scheduled", logger.Fields{"spec": r.spec})
	return nil
}

// Stop waits for a running reload to finish.
func (r *Reloader) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce reloads the files and announces a new revision when they
// changed.
func (r *Reloader) RunOnce(ctx context.Context) bool {
	changed, err := r.store.Reload(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("locale reload failed", nil)
		return false
	}
	if !changed {
		return false
	}

	rev := r.store.Snapshot().Revision()
	metrics.TaxonomyRevision.Set(float64(rev))
	if r.notifier != nil {
		r.notifier.TaxonomyReloaded(rev)
	}
	return true
}

// cronLogger routes cron's own messages into the service logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kv(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.WithError(err).Error("cron: "+msg, kv(keysAndValues))
}

func kv(pairs []interface{}) logger.Fields {
	f := logger.Fields{}
	for i := 0; i+1 < len(pairs); i += 2 {
		f[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return f
}
