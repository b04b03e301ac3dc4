package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogWarmup refreshes cached catalogs ahead of the selling day.
	TaskCatalogWarmup = "catalog:warmup"
)

// CatalogWarmupPayload lists the companies to warm. An empty list means every
// company with active products.
type CatalogWarmupPayload struct {
	CompanyIDs []int64 `json:"company_ids"`
}

// NewCatalogWarmupTask constructs an Asynq task for the catalog warmup job.
func NewCatalogWarmupTask(companyIDs ...int64) (*asynq.Task, error) {
	data, err := json.Marshal(CatalogWarmupPayload{CompanyIDs: companyIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
