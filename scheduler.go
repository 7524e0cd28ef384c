package geopress

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// startScheduler creates the background jobs of serve mode: the periodic
// full rescan, the optional content repository pull, and the one-shot wakeup
// for the next scheduled post. The returned stop function shuts the
// scheduler down.
func (a *App) startScheduler(ctx context.Context) (func(), error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.sched = sched
	a.mu.Unlock()

	if every := a.Config.RescanEvery(); every > 0 {
		_, err := sched.NewJob(
			gocron.DurationJob(every),
			gocron.NewTask(func() {
				if _, err := a.Sync(); err != nil {
					a.Log.Error().Err(err).Msg("scheduled rescan failed")
				}
			}),
			gocron.WithName("rescan"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, err
		}
	}

	if every := a.Config.GitPullEvery(); every > 0 && a.gitClient != nil {
		_, err := sched.NewJob(
			gocron.DurationJob(every),
			gocron.NewTask(func() {
				pullCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
				defer cancel()
				if err := a.PullContent(pullCtx); err != nil {
					a.Log.Error().Err(err).Msg("scheduled content pull failed")
				}
			}),
			gocron.WithName("content-pull"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, err
		}
	}

	sched.Start()
	return func() {
		if err := sched.Shutdown(); err != nil {
			a.Log.Error().Err(err).Msg("scheduler shutdown")
		}
	}, nil
}

// reschedulePublish replaces the one-shot wakeup so the post scheduled for
// next appears the moment its margin window opens. The wakeup is just a
// sync: visibility itself is a query-time comparison.
func (a *App) reschedulePublish(next time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched == nil {
		return
	}

	wakeAt := next.Add(-a.Config.PublishMargin())
	if wakeAt.Before(time.Now()) {
		wakeAt = time.Now().Add(time.Second)
	}

	if a.publishJob != nil {
		_ = a.sched.RemoveJob(a.publishJob.ID())
		a.publishJob = nil
	}
	job, err := a.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(wakeAt)),
		gocron.NewTask(func() {
			if _, err := a.Sync(); err != nil {
				a.Log.Error().Err(err).Msg("publish wakeup sync failed")
			}
		}),
		gocron.WithName("publish-wakeup"),
	)
	if err != nil {
		a.Log.Error().Err(err).Msg("schedule publish wakeup")
		return
	}
	a.publishJob = job
}
