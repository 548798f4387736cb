// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"planeat-api/internal/agenda"
	"planeat-api/internal/logx"
	"planeat-api/pkg"
)

var jobsLogger = logx.GetScope("jobs")

// Auditor runs one integrity audit.
type Auditor interface {
	Audit(ctx context.Context) (agenda.Report, error)
}

// Scheduler runs the integrity audit on a cron spec. The spec can be changed
// at runtime with Reschedule.
type Scheduler struct {
	cron    *cron.Cron
	auditor Auditor
	timeout time.Duration

	mu      sync.Mutex
	entryID cron.EntryID
	spec    string
	runs    int
}

func NewScheduler(a Auditor) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		auditor: a,
		timeout: 5 * time.Minute,
	}
}

// ValidateSpec reports whether spec parses with the scheduler's parser.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// Reschedule replaces the audit schedule. An empty spec disables the job.
func (s *Scheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spec == s.spec {
		return nil
	}
	var id cron.EntryID
	if spec != "" {
		var err error
		if id, err = s.cron.AddFunc(spec, s.RunAudit); err != nil {
			return err
		}
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID, s.spec = id, spec
	jobsLogger.Info("audit schedule set", zap.String("spec", spec))
	return nil
}

// RunAudit runs the audit once and logs the outcome.
func (s *Scheduler) RunAudit() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	rep, err := s.auditor.Audit(ctx)
	took := pkg.SmartDurationFormat(time.Since(start))
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	if err != nil {
		jobsLogger.Error("audit failed", zap.Error(err), zap.String("took", took))
		return
	}
	jobsLogger.Info("audit finished", zap.Bool("clean", rep.Clean()), zap.Int("entries", rep.Entries), zap.String("took", took))
}

// Runs reports how many audits have finished.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler and waits for a running audit to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
