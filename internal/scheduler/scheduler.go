package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	tickInterval = 30 * time.Second
	jobTimeout   = 5 * time.Minute
)

type scheduleKind int

const (
	kindDaily   scheduleKind = iota // каждый день в HH:MM
	kindMonthly                     // в заданный день месяца в HH:MM
	kindEvery                       // каждые N времени
)

// Schedule - расписание задачи в часовом поясе loc
type Schedule struct {
	kind     scheduleKind
	day      int
	hour     int
	minute   int
	interval time.Duration
	loc      *time.Location
}

// DailyAt создает расписание "каждый день в HH:MM" по времени loc
func DailyAt(hour, minute int, loc *time.Location) Schedule {
	return Schedule{kind: kindDaily, hour: hour, minute: minute, loc: orUTC(loc)}
}

// MonthlyAt создает расписание "каждый месяц day числа в HH:MM" по времени loc.
// day ограничен 1..28, чтобы задача была в каждом месяце.
func MonthlyAt(day, hour, minute int, loc *time.Location) Schedule {
	day = min(max(day, 1), 28)

	return Schedule{kind: kindMonthly, day: day, hour: hour, minute: minute, loc: orUTC(loc)}
}

// Every создает расписание "каждые d"
func Every(d time.Duration) Schedule {
	return Schedule{kind: kindEvery, interval: d, loc: time.UTC}
}

// Next вычисляет время следующего запуска строго после now
func (s Schedule) Next(now time.Time) time.Time {
	now = now.In(s.loc)

	switch s.kind {
	case kindDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month(), now.Day()+1, s.hour, s.minute, 0, 0, s.loc)
		}
		return next
	case kindMonthly:
		next := time.Date(now.Year(), now.Month(), s.day, s.hour, s.minute, 0, 0, s.loc)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month()+1, s.day, s.hour, s.minute, 0, 0, s.loc)
		}
		return next
	case kindEvery:
		return now.Add(s.interval)
	default:
		return now.Add(24 * time.Hour)
	}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}

	return loc
}

// Job описывает одну планируемую задачу
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	Handler     func(ctx context.Context) error

	mu      sync.Mutex
	running bool
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		Running:     j.running,
		NextRun:     j.nextRun,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
	}
}

// JobStatus - снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	Running     bool
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
}

// Scheduler запускает задачи по расписанию. Задача никогда не запускается
// параллельно сама с собой.
type Scheduler struct {
	jobs   []*Job
	mu     sync.RWMutex
	now    func() time.Time
	logger *slog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New создает планировщик
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Register добавляет задачу. Должен вызываться до Start.
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job.nextRun = job.Schedule.Next(s.now())
	s.jobs = append(s.jobs, job)

	s.logger.Info("📋 Job registered",
		slog.String("job", job.Name),
		slog.Time("next_run", job.nextRun))
}

// Start запускает цикл планировщика в фоне. Цикл завершается по Stop или отмене ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	s.logger.Info("✅ Scheduler started", slog.Int("jobs", len(s.Jobs())))
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()

	s.logger.Info("🛑 Scheduler stopped")
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}

	return statuses
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	// задачи получают контекст, который отменяется при остановке
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.tick(runCtx)

	for {
		select {
		case <-ticker.C:
			s.tick(runCtx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick запускает задачи, время которых наступило
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	for _, job := range jobs {
		job.mu.Lock()
		due := !job.running && !now.Before(job.nextRun)
		if due {
			job.running = true
		}
		job.mu.Unlock()

		if due {
			s.wg.Add(1)
			go s.run(ctx, job)
		}
	}
}

// run выполняет задачу и обновляет её состояние
func (s *Scheduler) run(ctx context.Context, job *Job) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	s.logger.Info("▶️ Job started", slog.String("job", job.Name))
	start := s.now()

	err := job.Handler(ctx)

	elapsed := time.Since(start)

	job.mu.Lock()
	job.running = false
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.nextRun = job.Schedule.Next(s.now())
	nextRun := job.nextRun
	job.mu.Unlock()

	if err != nil {
		s.logger.Error("❌ Job failed",
			slog.String("job", job.Name),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err))
		return
	}

	s.logger.Info("✅ Job finished",
		slog.String("job", job.Name),
		slog.Duration("elapsed", elapsed),
		slog.Time("next_run", nextRun))
}
