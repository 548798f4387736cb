package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeat-api/internal/agenda"
)

type countingAuditor struct {
	calls atomic.Int32
	err   error
}

func (a *countingAuditor) Audit(context.Context) (agenda.Report, error) {
	a.calls.Add(1)
	return agenda.Report{Entries: 3}, a.err
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	a := &countingAuditor{}
	s := NewScheduler(a)
	require.NoError(t, s.Reschedule("@every 1s"))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return a.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_Reschedule(t *testing.T) {
	s := NewScheduler(&countingAuditor{})
	assert.Error(t, s.Reschedule("not a cron spec"))
	require.NoError(t, s.Reschedule("@every 1h"))
	require.NoError(t, s.Reschedule("@every 1h"))
	assert.Len(t, s.cron.Entries(), 1)
	require.NoError(t, s.Reschedule("@daily"))
	assert.Len(t, s.cron.Entries(), 1)
	require.NoError(t, s.Reschedule(""))
	assert.Empty(t, s.cron.Entries())
}

func TestValidateSpec(t *testing.T) {
	assert.NoError(t, ValidateSpec("@every 30m"))
	assert.NoError(t, ValidateSpec("0 3 * * *"))
	assert.Error(t, ValidateSpec("every day"))
}

func TestScheduler_RunAuditError(t *testing.T) {
	a := &countingAuditor{err: errors.New("db down")}
	s := NewScheduler(a)
	s.RunAudit()
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, 1, s.Runs())
}
