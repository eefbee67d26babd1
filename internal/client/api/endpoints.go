package api

import "fmt"

const (
	EndpointLogin         = "/auth/login/"
	EndpointRegister      = "/auth/register/"
	EndpointLogout        = "/auth/logout/"
	EndpointMe            = "/auth/user/"
	EndpointWorkerProfile = "/workers/profile/"
	EndpointWorkerJobs    = "/workers/jobs/"
	EndpointClientJobs    = "/client/jobs/"
	EndpointNotifications = "/notifications/"
)

// JobPath is the detail resource for a job.
func JobPath(id int64) string { return fmt.Sprintf("/jobs/%d/", id) }

// ApplyPath is where a worker applies to a job.
func ApplyPath(id int64) string { return fmt.Sprintf("/jobs/%d/apply/", id) }

// NotificationPath is the detail resource for a notification.
func NotificationPath(id int64) string { return fmt.Sprintf("/notifications/%d/", id) }
