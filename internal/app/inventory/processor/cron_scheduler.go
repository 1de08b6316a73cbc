package processor

import (
	"context"

	"lavka/pkg/logger"

	"github.com/robfig/cron/v3"
)

// LowStockScanner проверяет остатки товаров
type LowStockScanner interface {
	ScanLowStock(ctx context.Context, threshold int) (int, error)
}

// CronScheduler периодически запускает проверку низких остатков
type CronScheduler struct {
	cron      *cron.Cron
	scanner   LowStockScanner
	threshold int
}

func NewCronScheduler(scanner LowStockScanner, threshold int) *CronScheduler {
	return &CronScheduler{
		cron:      cron.New(),
		scanner:   scanner,
		threshold: threshold,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting low stock scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		count, err := s.scanner.ScanLowStock(ctx, s.threshold)
		if err != nil {
			logger.Error().Err(err).Msg("Low stock scan failed")
			return
		}
		logger.Info().Int("count", count).Msg("Low stock scan completed")
	})

	if err != nil {
		return err
	}

	s.cron.Start()

	// Первая проверка сразу при старте, не дожидаясь расписания
	if _, err := s.scanner.ScanLowStock(ctx, s.threshold); err != nil {
		logger.Warn().Err(err).Msg("Initial low stock scan failed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping low stock scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Low stock scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
