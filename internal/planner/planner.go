// Package planner runs the agenda engine against stored data. It loads
// narrowed snapshots, serializes lazy calendar day creation and emits events.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planeat-api/internal/agenda"
	"planeat-api/internal/lockx"
	"planeat-api/internal/logx"
	"planeat-api/internal/metrics"
	"planeat-api/internal/mqx"
	"planeat-api/internal/store"
	"planeat-api/pkg"
)

var plannerLogger = logx.GetScope("planner")

var (
	ErrInvalidMealType = errors.New("planner: invalid meal type")
	ErrInvalidDate     = errors.New("planner: invalid date")
	ErrRecipeNotFound  = errors.New("planner: recipe not found")
	ErrEntryNotFound   = errors.New("planner: schedule entry not found")
	ErrForbidden       = errors.New("planner: forbidden")
)

// Service schedules recipes and reads agendas.
type Service struct {
	store       *store.Store
	engine      *agenda.Engine
	locker      lockx.Locker
	pub         mqx.Publisher
	metrics     *metrics.Metrics
	lockTimeout time.Duration
}

type Option func(*Service)

// WithLocker replaces the default in-process locker, e.g. with lockx.Redis
// when several API instances share a database.
func WithLocker(l lockx.Locker) Option { return func(s *Service) { s.locker = l } }

func WithPublisher(p mqx.Publisher) Option { return func(s *Service) { s.pub = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithLockTimeout(d time.Duration) Option { return func(s *Service) { s.lockTimeout = d } }

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, locker: lockx.NewLocal(), lockTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	engineOpts := []agenda.Option{agenda.WithObserver(agenda.ObserverFunc(logOrphan))}
	if s.metrics != nil {
		engineOpts = append(engineOpts, agenda.WithObserver(s.metrics))
	}
	s.engine = agenda.New(engineOpts...)
	return s
}

func logOrphan(o agenda.Orphan) {
	plannerLogger.Warn("orphan schedule entry",
		zap.String("entry_id", o.Entry.ID.String()),
		zap.String("recipe_id", o.Entry.RecipeID.String()),
		zap.String("calendar_day_id", o.Entry.CalendarDayID.String()),
		zap.String("reason", o.Reason),
	)
}

// monthSnapshot loads the month's days and the user's entries in that month
// concurrently. Recipes are not needed to highlight days.
func (s *Service) monthSnapshot(ctx context.Context, userID uuid.UUID, year, month int) (agenda.Snapshot, error) {
	var snap agenda.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Days, err = s.store.DaysInMonth(gctx, year, month)
		return err
	})
	g.Go(func() (err error) {
		snap.Entries, err = s.store.EntriesForUserInMonth(gctx, userID, year, month)
		return err
	})
	return snap, g.Wait()
}

// DayAgenda returns the user's agenda for date in entry order.
func (s *Service) DayAgenda(ctx context.Context, userID uuid.UUID, date agenda.Date) ([]agenda.Scheduled, error) {
	if !date.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	snap, err := s.daySnapshot(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.engine.ScheduleForUserOnDate(snap, userID, date), nil
}

// daySnapshot loads the calendar day for date, the user's entries on it and
// their recipes. A date without a calendar day yields an empty snapshot.
func (s *Service) daySnapshot(ctx context.Context, userID uuid.UUID, date agenda.Date) (agenda.Snapshot, error) {
	var snap agenda.Snapshot
	day, err := s.store.DayByDate(ctx, date)
	if errors.Is(err, store.ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return snap, err
	}
	snap.Days = []agenda.CalendarDay{day}
	if snap.Entries, err = s.store.EntriesForUserOnDays(ctx, userID, []uuid.UUID{day.ID}); err != nil {
		return snap, err
	}
	ids := make([]uuid.UUID, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		ids = append(ids, e.RecipeID)
	}
	snap.Recipes, err = s.store.RecipesByIDs(ctx, ids)
	return snap, err
}

// MonthHighlights returns the sorted days of year/month on which the user has content.
func (s *Service) MonthHighlights(ctx context.Context, userID uuid.UUID, year, month int) ([]int, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	snap, err := s.monthSnapshot(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	return s.engine.DaysWithContent(snap, userID, year, month).Sorted(), nil
}

// CalendarDays lists the calendar day records of year/month.
func (s *Service) CalendarDays(ctx context.Context, year, month int) ([]agenda.CalendarDay, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	return s.store.DaysInMonth(ctx, year, month)
}

// ScheduleInput is a request to put a recipe on the user's agenda.
type ScheduleInput struct {
	UserID   uuid.UUID
	RecipeID uuid.UUID
	Date     agenda.Date
	MealType string
}

// ScheduleResult is the stored entry and the day it landed on.
type ScheduleResult struct {
	Entry      agenda.ScheduleEntry `json:"entry"`
	Day        agenda.CalendarDay   `json:"day"`
	DayCreated bool                 `json:"day_created"`
}

// Schedule validates in, makes sure the calendar day exists and stores the entry.
// Day creation is serialized per date by the locker; the unique date index
// settles races between processes that do not share a locker.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (ScheduleResult, error) {
	meal, err := agenda.ParseMealType(in.MealType)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("%w: %q", ErrInvalidMealType, in.MealType)
	}
	if !in.Date.Valid() {
		return ScheduleResult{}, fmt.Errorf("%w: %s", ErrInvalidDate, in.Date)
	}
	if _, err := s.store.RecipeByID(ctx, in.RecipeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ScheduleResult{}, ErrRecipeNotFound
		}
		return ScheduleResult{}, err
	}

	day, created, err := s.ensureDay(ctx, in.Date)
	if err != nil {
		return ScheduleResult{}, err
	}

	entry := agenda.ScheduleEntry{UserID: in.UserID, RecipeID: in.RecipeID, CalendarDayID: day.ID, MealType: meal}
	if err := s.store.CreateEntry(ctx, &entry); err != nil {
		if errors.Is(err, store.ErrDanglingRef) {
			return ScheduleResult{}, ErrRecipeNotFound
		}
		return ScheduleResult{}, err
	}
	if s.metrics != nil {
		s.metrics.EntriesCreated.WithLabelValues(string(meal)).Inc()
	}
	_ = mqx.PublishJSON(ctx, s.pub, mqx.KeyScheduleCreated, entry)
	plannerLogger.Info("recipe scheduled",
		zap.String("entry_id", entry.ID.String()),
		zap.String("date", in.Date.String()),
		zap.String("meal_type", string(meal)),
		zap.Bool("day_created", created),
	)
	return ScheduleResult{Entry: entry, Day: day, DayCreated: created}, nil
}

func (s *Service) ensureDay(ctx context.Context, date agenda.Date) (agenda.CalendarDay, bool, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, "calday:"+date.String())
	if err != nil {
		return agenda.CalendarDay{}, false, fmt.Errorf("planner: lock %s: %w", date, err)
	}
	defer unlock()

	days, err := s.store.DaysInMonth(ctx, date.Year, date.Month)
	if err != nil {
		return agenda.CalendarDay{}, false, err
	}
	day, create := s.engine.EnsureCalendarDay(days, date.Year, date.Month, date.Day)
	if !create {
		return day, false, nil
	}
	stored, created, err := s.store.InsertDay(ctx, day)
	if err != nil {
		return agenda.CalendarDay{}, false, err
	}
	if created {
		if s.metrics != nil {
			s.metrics.DaysCreated.Inc()
		}
		_ = mqx.PublishJSON(ctx, s.pub, mqx.KeyCalendarDay, stored)
	}
	return stored, created, nil
}

// Unschedule deletes one of the user's entries.
func (s *Service) Unschedule(ctx context.Context, userID, entryID uuid.UUID) error {
	entry, err := s.store.EntryByID(ctx, entryID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEntryNotFound
	}
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return ErrForbidden
	}
	if err := s.store.DeleteEntry(ctx, userID, entryID); err != nil {
		return entryErr(err)
	}
	_ = mqx.PublishJSON(ctx, s.pub, mqx.KeyScheduleDeleted, entry)
	return nil
}

func entryErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// Audit loads every entry, day and recipe and checks referential integrity.
func (s *Service) Audit(ctx context.Context) (agenda.Report, error) {
	start := time.Now()
	var snap agenda.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Entries, err = s.store.AllEntries(gctx); return err })
	g.Go(func() (err error) { snap.Days, err = s.store.AllDays(gctx); return err })
	g.Go(func() (err error) { snap.Recipes, err = s.store.AllRecipeRefs(gctx); return err })
	if err := g.Wait(); err != nil {
		return agenda.Report{}, err
	}
	rep := s.engine.Audit(snap)
	took := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveAudit(rep, took)
	}
	fields := []zap.Field{
		zap.Int("entries", rep.Entries),
		zap.Int("orphan_recipe_refs", len(rep.OrphanRecipeRefs)),
		zap.Int("orphan_day_refs", len(rep.OrphanDayRefs)),
		zap.Int("duplicate_days", len(rep.DuplicateDays)),
		zap.String("took", pkg.SmartDurationFormat(took)),
	}
	if rep.Clean() {
		plannerLogger.Info("integrity audit clean", fields...)
	} else {
		plannerLogger.Warn("integrity audit found problems", fields...)
	}
	return rep, nil
}
