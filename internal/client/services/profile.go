package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/api"
	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
)

const profileCacheKey = "worker_profile"

// ProfileService reads the worker profile through the offline cache.
// Updates replace the whole profile, so they are sent directly and never
// queued: a replay could overwrite edits made elsewhere in the meantime.
type ProfileService interface {
	Get(ctx context.Context) (*models.WorkerProfile, error)
	Update(ctx context.Context, p models.WorkerProfile) (*models.WorkerProfile, error)
}

type profileService struct {
	api      api.Client
	queue    *offline.Queue
	cacheTTL time.Duration
}

func NewProfileService(client api.Client, queue *offline.Queue, cacheTTL time.Duration) ProfileService {
	return &profileService{api: client, queue: queue, cacheTTL: cacheTTL}
}

func (s *profileService) Get(ctx context.Context) (*models.WorkerProfile, error) {
	return offline.WithOfflineSupport(ctx, s.queue, profileCacheKey,
		s.api.WorkerProfile,
		offline.Options[*models.WorkerProfile]{Cache: true, CacheExpiry: s.cacheTTL})
}

func (s *profileService) Update(ctx context.Context, p models.WorkerProfile) (*models.WorkerProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out, err := s.api.UpdateWorkerProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	// A failed refresh only leaves the older cached copy behind.
	_ = s.queue.CacheData(ctx, profileCacheKey, out, s.cacheTTL)
	return out, nil
}
