package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/salesdesk/salesdesk/internal/jobs"
)

type stubWarmer struct {
	mu       sync.Mutex
	warmed   []int64
	products map[int64]int
	failOn   int64
}

func (s *stubWarmer) Warm(ctx context.Context, companyID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if companyID == s.failOn {
		return 0, errors.New("catalog query failed")
	}
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("warm without deadline")
	}
	s.warmed = append(s.warmed, companyID)
	return s.products[companyID], nil
}

type stubCompanies struct {
	ids []int64
	err error
}

func (s stubCompanies) ActiveCompanies(ctx context.Context) ([]int64, error) {
	return s.ids, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func warmupTask(t *testing.T, ids ...int64) *asynq.Task {
	t.Helper()
	task, err := NewCatalogWarmupTask(ids...)
	require.NoError(t, err)
	return task
}

func TestNewCatalogWarmupTask(t *testing.T) {
	task := warmupTask(t, 4, 9)
	assert.Equal(t, TaskCatalogWarmup, task.Type())

	var payload CatalogWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, []int64{4, 9}, payload.CompanyIDs)
}

func TestCatalogWarmupRequestedCompanies(t *testing.T) {
	warmer := &stubWarmer{products: map[int64]int{4: 10, 9: 3}}
	job := NewCatalogWarmupJob(warmer, stubCompanies{ids: []int64{1, 2}}, discardLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), warmupTask(t, 4, 9)))
	assert.Equal(t, []int64{4, 9}, warmer.warmed)
}

func TestCatalogWarmupDiscoversActiveCompanies(t *testing.T) {
	warmer := &stubWarmer{}
	job := NewCatalogWarmupJob(warmer, stubCompanies{ids: []int64{1, 2, 3}}, discardLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), warmupTask(t)))
	assert.Equal(t, []int64{1, 2, 3}, warmer.warmed)
}

func TestCatalogWarmupNoCompanies(t *testing.T) {
	warmer := &stubWarmer{}
	job := NewCatalogWarmupJob(warmer, stubCompanies{}, discardLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), warmupTask(t)))
	assert.Empty(t, warmer.warmed)
}

func TestCatalogWarmupFailures(t *testing.T) {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())

	listErr := errors.New("db down")
	job := NewCatalogWarmupJob(&stubWarmer{}, stubCompanies{err: listErr}, discardLogger(), metrics)
	require.ErrorIs(t, job.Handle(context.Background(), warmupTask(t)), listErr)

	warmer := &stubWarmer{failOn: 2}
	job = NewCatalogWarmupJob(warmer, nil, discardLogger(), metrics)
	require.Error(t, job.Handle(context.Background(), warmupTask(t, 1, 2, 3)))
	assert.Equal(t, []int64{1}, warmer.warmed)

	err := job.Handle(context.Background(), asynq.NewTask(TaskCatalogWarmup, []byte("{bad")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	var unset *CatalogWarmupJob
	require.Error(t, unset.Handle(context.Background(), warmupTask(t)))
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, discardLogger()).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"failed":0}`, rr.Body.String())
}

func TestRedisOpt(t *testing.T) {
	opt, err := RedisOpt("127.0.0.1:6379")
	require.NoError(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}, opt)

	opt, err = RedisOpt("redis://:secret@cache:6380/3")
	require.NoError(t, err)
	client, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	assert.Equal(t, "cache:6380", client.Addr)
	assert.Equal(t, 3, client.DB)
	assert.Equal(t, "secret", client.Password)
}

type recordingEnqueuer struct {
	tasks  []*asynq.Task
	opts   [][]asynq.Option
	err    error
	closed bool
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueDefault}, nil
}

func (r *recordingEnqueuer) Close() error {
	r.closed = true
	return nil
}

func TestClientEnqueueCatalogWarmup(t *testing.T) {
	enq := &recordingEnqueuer{}
	client := NewClientWith(enq)

	info, err := client.EnqueueCatalogWarmup(context.Background(), 5, 6)
	require.NoError(t, err)
	assert.Equal(t, TaskCatalogWarmup, info.Type)

	require.Len(t, enq.tasks, 1)
	var payload CatalogWarmupPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, []int64{5, 6}, payload.CompanyIDs)

	var queue string
	for _, opt := range enq.opts[0] {
		if opt.Type() == asynq.QueueOpt {
			queue = opt.Value().(string)
		}
	}
	assert.Equal(t, QueueDefault, queue)

	require.NoError(t, client.Close())
	assert.True(t, enq.closed)
}

func TestClientEnqueueCatalogWarmupError(t *testing.T) {
	client := NewClientWith(&recordingEnqueuer{err: asynq.ErrDuplicateTask})

	_, err := client.EnqueueCatalogWarmup(context.Background())
	require.ErrorIs(t, err, asynq.ErrDuplicateTask)
}
