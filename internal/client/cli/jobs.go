package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
)

var getMultiline = GetMultiline
var getAmount = GetAmount

// Jobs lists open jobs for workers. Offline, the last fetched page is shown.
func (a *App) Jobs(ctx context.Context, args []string) error {
	page, err := parsePage(args)
	if err != nil {
		return err
	}
	list, err := a.jobs.AvailableJobs(ctx, page)
	if err != nil {
		return err
	}
	printJobs(list)
	return nil
}

// MyJobs lists jobs posted by the signed-in client.
func (a *App) MyJobs(ctx context.Context, args []string) error {
	page, err := parsePage(args)
	if err != nil {
		return err
	}
	list, err := a.jobs.ClientJobs(ctx, page)
	if err != nil {
		return err
	}
	printJobs(list)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show")
	if err != nil {
		return err
	}
	j, err := a.jobs.Job(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("#%d %s [%s]", j.ID, j.Title, j.Status))
	if j.Category != "" || j.Location != "" {
		printlnFn(fmt.Sprintf("%s, %s", j.Category, j.Location))
	}
	if j.Budget > 0 {
		printlnFn(fmt.Sprintf("Budget: %.2f", j.Budget))
	}
	if j.Description != "" {
		printlnFn(j.Description)
	}
	return nil
}

func (a *App) Apply(ctx context.Context, args []string) error {
	id, err := parseID(args, "apply")
	if err != nil {
		return err
	}
	letter, err := getMultiline(a.reader, "Cover letter", a.out)
	if err != nil {
		return err
	}
	rate, err := getAmount(a.reader, "Proposed rate (empty for none)", a.out)
	if err != nil {
		return err
	}

	ja, err := a.jobs.ApplyToJob(ctx, id, models.ApplyRequest{CoverLetter: letter, ProposedRate: rate})
	if queued(err) {
		return nil
	}
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Application #%d sent (%s)", ja.ID, ja.Status))
	return nil
}

func (a *App) PostJob(ctx context.Context) error {
	var req models.CreateJobRequest
	var err error

	if req.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if req.Title == "" {
		return usage("a job needs a title")
	}
	if req.Description, err = getMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if req.Category, err = getSimpleText(a.reader, "Category", a.out); err != nil {
		return err
	}
	if req.Location, err = getSimpleText(a.reader, "Location", a.out); err != nil {
		return err
	}
	if req.Budget, err = getAmount(a.reader, "Budget", a.out); err != nil {
		return err
	}

	j, err := a.jobs.CreateJob(ctx, req)
	if queued(err) {
		return nil
	}
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Job #%d posted", j.ID))
	return nil
}

// queued reports a mutation parked in the offline queue.
func queued(err error) bool {
	if !errors.Is(err, offline.ErrQueued) {
		return false
	}
	printlnFn("You are offline. The action was saved and will be sent when the connection is back.")
	return true
}

func printJobs(list *models.JobList) {
	if len(list.Results) == 0 {
		printlnFn("No jobs")
		return
	}
	for _, j := range list.Results {
		printlnFn(fmt.Sprintf("#%-6d %-40s %-12s %.2f", j.ID, j.Title, j.Status, j.Budget))
	}
	if list.Next != "" {
		printlnFn(fmt.Sprintf("%d jobs in total, more on the next page", list.Count))
	}
}
