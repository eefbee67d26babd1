package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/api"
	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
)

// JobService reads jobs through the offline cache and sends job mutations
// through the offline queue. A mutation made without a connection returns
// an error matching offline.ErrQueued and a nil result.
type JobService interface {
	AvailableJobs(ctx context.Context, page int) (*models.JobList, error)
	ClientJobs(ctx context.Context, page int) (*models.JobList, error)
	Job(ctx context.Context, id int64) (*models.Job, error)
	CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error)
	ApplyToJob(ctx context.Context, id int64, req models.ApplyRequest) (*models.JobApplication, error)
}

type jobService struct {
	api      api.Client
	queue    *offline.Queue
	cacheTTL time.Duration
}

func NewJobService(client api.Client, queue *offline.Queue, cacheTTL time.Duration) JobService {
	return &jobService{api: client, queue: queue, cacheTTL: cacheTTL}
}

func (s *jobService) AvailableJobs(ctx context.Context, page int) (*models.JobList, error) {
	return offline.WithOfflineSupport(ctx, s.queue, fmt.Sprintf("worker_jobs_p%d", max(page, 1)),
		func(ctx context.Context) (*models.JobList, error) { return s.api.AvailableJobs(ctx, page) },
		offline.Options[*models.JobList]{Cache: true, CacheExpiry: s.cacheTTL})
}

func (s *jobService) ClientJobs(ctx context.Context, page int) (*models.JobList, error) {
	return offline.WithOfflineSupport(ctx, s.queue, fmt.Sprintf("client_jobs_p%d", max(page, 1)),
		func(ctx context.Context) (*models.JobList, error) { return s.api.ClientJobs(ctx, page) },
		offline.Options[*models.JobList]{Cache: true, CacheExpiry: s.cacheTTL})
}

func (s *jobService) Job(ctx context.Context, id int64) (*models.Job, error) {
	return offline.WithOfflineSupport(ctx, s.queue, fmt.Sprintf("job_%d", id),
		func(ctx context.Context) (*models.Job, error) { return s.api.Job(ctx, id) },
		offline.Options[*models.Job]{Cache: true, CacheExpiry: s.cacheTTL})
}

func (s *jobService) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error) {
	var out models.Job
	if err := s.queue.Submit(ctx, api.EndpointClientJobs, http.MethodPost, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *jobService) ApplyToJob(ctx context.Context, id int64, req models.ApplyRequest) (*models.JobApplication, error) {
	var out models.JobApplication
	if err := s.queue.Submit(ctx, api.ApplyPath(id), http.MethodPost, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
