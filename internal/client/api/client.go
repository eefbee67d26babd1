package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
)

// Client is the backend contract used by services.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)

	WorkerProfile(ctx context.Context) (*models.WorkerProfile, error)
	UpdateWorkerProfile(ctx context.Context, p models.WorkerProfile) (*models.WorkerProfile, error)

	AvailableJobs(ctx context.Context, page int) (*models.JobList, error)
	ClientJobs(ctx context.Context, page int) (*models.JobList, error)
	CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error)
	Job(ctx context.Context, id int64) (*models.Job, error)
	ApplyToJob(ctx context.Context, id int64, req models.ApplyRequest) (*models.JobApplication, error)

	Notifications(ctx context.Context) (*models.NotificationList, error)
	MarkNotificationRead(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
}

// Transport is what the API needs from the HTTP core.
type Transport interface {
	Do(ctx context.Context, r transport.Request, out any) error
	Ping(ctx context.Context) error
}

type httpClient struct {
	t Transport
}

func NewClient(t Transport) Client {
	return &httpClient{t: t}
}

func (c *httpClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   EndpointLogin,
		Body:   models.LoginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: EndpointRegister, Body: req}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Logout(ctx context.Context) error {
	return c.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: EndpointLogout, RequireAuth: true}, nil)
}

func (c *httpClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.t.Do(ctx, protected(http.MethodGet, EndpointMe, nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) WorkerProfile(ctx context.Context) (*models.WorkerProfile, error) {
	var out models.WorkerProfile
	if err := c.t.Do(ctx, protected(http.MethodGet, EndpointWorkerProfile, nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) UpdateWorkerProfile(ctx context.Context, p models.WorkerProfile) (*models.WorkerProfile, error) {
	var out models.WorkerProfile
	if err := c.t.Do(ctx, protected(http.MethodPut, EndpointWorkerProfile, p), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) AvailableJobs(ctx context.Context, page int) (*models.JobList, error) {
	return c.jobList(ctx, EndpointWorkerJobs, page)
}

func (c *httpClient) ClientJobs(ctx context.Context, page int) (*models.JobList, error) {
	return c.jobList(ctx, EndpointClientJobs, page)
}

func (c *httpClient) jobList(ctx context.Context, path string, page int) (*models.JobList, error) {
	r := protected(http.MethodGet, path, nil)
	if page > 1 {
		r.Query = url.Values{"page": {strconv.Itoa(page)}}
	}
	var out models.JobList
	if err := c.t.Do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateJob(ctx context.Context, req models.CreateJobRequest) (*models.Job, error) {
	var out models.Job
	if err := c.t.Do(ctx, protected(http.MethodPost, EndpointClientJobs, req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Job(ctx context.Context, id int64) (*models.Job, error) {
	var out models.Job
	if err := c.t.Do(ctx, protected(http.MethodGet, JobPath(id), nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ApplyToJob(ctx context.Context, id int64, req models.ApplyRequest) (*models.JobApplication, error) {
	var out models.JobApplication
	if err := c.t.Do(ctx, protected(http.MethodPost, ApplyPath(id), req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Notifications(ctx context.Context) (*models.NotificationList, error) {
	var out models.NotificationList
	if err := c.t.Do(ctx, protected(http.MethodGet, EndpointNotifications, nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.t.Do(ctx, protected(http.MethodPatch, NotificationPath(id), models.MarkReadRequest{IsRead: true}), nil)
}

func (c *httpClient) Ping(ctx context.Context) error {
	return c.t.Ping(ctx)
}

func protected(method, path string, body any) transport.Request {
	return transport.Request{Method: method, Path: path, Body: body, RequireAuth: true}
}
