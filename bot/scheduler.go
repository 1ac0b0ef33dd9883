package bot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"rpg-bot/model"
)

const (
	defaultSyncInterval  = 5 * time.Minute
	defaultStatsInterval = time.Hour
)

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	Logger() *zap.Logger
	Commands(ctx context.Context) (model.CommandBook, error)
	Reload(ctx context.Context, book model.CommandBook)
	Stats() EngineStats
}

// EngineStats is a point-in-time view of the engine tables.
type EngineStats struct {
	Cooldowns            int
	Components           int
	PendingConfirmations int
}

// Scheduler runs the periodic background tasks.
type Scheduler struct {
	bot           BotProvider
	log           *zap.Logger
	syncInterval  time.Duration
	statsInterval time.Duration

	mu      sync.Mutex
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:           bot,
		log:           bot.Logger().Named("scheduler"),
		syncInterval:  defaultSyncInterval,
		statsInterval: defaultStatsInterval,
		done:          make(chan struct{}),
	}
}

// Start begins the scheduled tasks. pollBook enables the periodic command
// book sync used by sources that cannot push changes.
func (s *Scheduler) Start(ctx context.Context, pollBook bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go s.startScheduledTasks(ctx, pollBook)
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	s.wg.Wait()
	s.log.Debug("scheduler stopped")
}

func (s *Scheduler) startScheduledTasks(ctx context.Context, pollBook bool) {
	defer s.wg.Done()

	statsTicker := time.NewTicker(s.statsInterval)
	defer statsTicker.Stop()

	var syncC <-chan time.Time
	if pollBook {
		syncTicker := time.NewTicker(s.syncInterval)
		defer syncTicker.Stop()
		syncC = syncTicker.C
	}

	for {
		select {
		case <-syncC:
			s.syncBook(ctx)
		case <-statsTicker.C:
			s.logStats()
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) syncBook(ctx context.Context) {
	book, err := s.bot.Commands(ctx)
	if err != nil {
		s.log.Warn("command book sync failed", zap.Error(err))
		return
	}
	s.bot.Reload(ctx, book)
}

func (s *Scheduler) logStats() {
	st := s.bot.Stats()
	s.log.Info("engine tables",
		zap.Int("cooldowns", st.Cooldowns),
		zap.Int("components", st.Components),
		zap.Int("pending_confirmations", st.PendingConfirmations))
}
