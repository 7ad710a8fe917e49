package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"travelink/internal/approver"
	"travelink/internal/notification"
	"travelink/internal/request"
	"travelink/internal/user"
	"travelink/internal/workflow"
	"travelink/pkg/config"
)

// Job nudges approvers about requests that have sat untouched at a
// pending stage for longer than the configured window.
type Job struct {
	Cfg       config.Config
	Log       *zap.Logger
	Requests  *request.Repository
	Users     *user.Repository
	Approvers *approver.Repository
	Notify    *notification.Dispatcher
}

// Start registers the job on its cron schedule and starts the runner.
// Call Stop on the returned cron to drain on shutdown.
func (j *Job) Start() (*cron.Cron, error) {
	c := cron.New()
	spec := j.Cfg.ReminderCronSpec
	if spec == "" {
		spec = "0 8 * * *"
	}
	if _, err := c.AddFunc(spec, j.Run); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	hours := j.Cfg.ReminderPendingHours
	if hours <= 0 {
		hours = 48
	}
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	stalled, err := j.Requests.StalledBefore(ctx, cutoff)
	if err != nil {
		j.Log.Error("list stalled requests", zap.Error(err))
		return
	}
	if len(stalled) == 0 {
		return
	}

	candidates, err := j.Approvers.ListCandidates(ctx)
	if err != nil {
		j.Log.Error("list approver candidates", zap.Error(err))
		return
	}

	for _, req := range stalled {
		requester, err := j.Users.GetByID(ctx, req.RequesterID)
		if err != nil {
			j.Log.Warn("load requester", zap.Error(err), zap.String("request", req.ID))
			continue
		}
		sg := workflow.SuggestNextApprover(req.AdvisorContext(requester))
		if sg == nil {
			continue
		}
		resolved := workflow.ResolveApprover(sg, candidates, j.Cfg.PreferredAdminMatch)
		// Previous stage equals current: the nudge is a repeat, not a
		// transition.
		j.Notify.StageChanged(ctx, req, req.Stage, sg, resolved)
	}

	j.Log.Info("reminder sweep complete", zap.Int("stalled", len(stalled)))
}
