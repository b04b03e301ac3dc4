package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/salesdesk/salesdesk/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer loads one company's catalog into the cache.
type Warmer interface {
	Warm(ctx context.Context, companyID int64) (int, error)
}

// CompanyLister discovers companies that have sellable products.
type CompanyLister interface {
	ActiveCompanies(ctx context.Context) ([]int64, error)
}

// CatalogWarmupJob reloads the cached catalog of each company from Postgres.
type CatalogWarmupJob struct {
	Warmer    Warmer
	Companies CompanyLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Timeout   time.Duration
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(warmer Warmer, companies CompanyLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogWarmupJob {
	return &CatalogWarmupJob{
		Warmer:    warmer,
		Companies: companies,
		Logger:    logger,
		Metrics:   metrics,
		Timeout:   20 * time.Second,
	}
}

// Handle processes catalog warmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCatalogWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting catalog warmup", slog.Int("requested", len(payload.CompanyIDs)))
	start := time.Now()

	companies := payload.CompanyIDs
	if len(companies) == 0 {
		if j.Companies == nil {
			resultErr = errors.New("catalog warmup: company lister not configured")
			return resultErr
		}
		found, err := j.Companies.ActiveCompanies(ctx)
		if err != nil {
			resultErr = err
			logger.Error("load warmup companies", slog.Any("error", err))
			return resultErr
		}
		companies = found
	}
	if len(companies) == 0 {
		logger.Info("no companies discovered for warmup")
		return resultErr
	}

	products := 0
	for _, companyID := range companies {
		n, err := j.warmCompany(ctx, companyID)
		if err != nil {
			resultErr = err
			logger.Error("warm company", slog.Int64("company_id", companyID), slog.Any("error", err))
			return resultErr
		}
		j.metrics().AddWarmed(companyID, n)
		products += n
	}

	logger.Info("completed catalog warmup",
		slog.Int("companies", len(companies)),
		slog.Int("products", products),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *CatalogWarmupJob) warmCompany(ctx context.Context, companyID int64) (int, error) {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	return j.Warmer.Warm(ctx, companyID)
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCatalogWarmup))
}

func (j *CatalogWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
