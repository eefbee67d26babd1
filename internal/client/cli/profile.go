package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
)

// Profile shows the worker profile. "profile edit" prompts for each field;
// an empty answer keeps the current value.
func (a *App) Profile(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] != "edit" {
		return usage("profile [edit]")
	}
	p, err := a.profiles.Get(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		printProfile(p)
		return nil
	}

	edited := *p
	if err := a.askText("Bio", &edited.Bio); err != nil {
		return err
	}
	skills := strings.Join(edited.Skills, ", ")
	if err := a.askText("Skills (comma separated)", &skills); err != nil {
		return err
	}
	edited.Skills = splitSkills(skills)
	if err := a.askText("Location", &edited.Location); err != nil {
		return err
	}
	rate := strconv.FormatFloat(edited.HourlyRate, 'f', 2, 64)
	if err := a.askText("Hourly rate", &rate); err != nil {
		return err
	}
	if edited.HourlyRate, err = parseAmount(rate); err != nil {
		return err
	}
	available := "n"
	if edited.IsAvailable {
		available = "y"
	}
	if err := a.askText("Available for work (y/n)", &available); err != nil {
		return err
	}
	edited.IsAvailable = strings.EqualFold(available, "y") || strings.EqualFold(available, "yes")

	if _, err := a.profiles.Update(ctx, edited); err != nil {
		return err
	}
	printlnFn("Profile updated")
	return nil
}

// askText prompts with the current value and overwrites it with a non-empty
// answer.
func (a *App) askText(prompt string, value *string) error {
	answer, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", prompt, *value), a.out)
	if err != nil {
		return err
	}
	if answer != "" {
		*value = answer
	}
	return nil
}

func splitSkills(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func printProfile(p *models.WorkerProfile) {
	status := "not available"
	if p.IsAvailable {
		status = "available"
	}
	printlnFn(fmt.Sprintf("%s, %s", p.Location, status))
	if p.Bio != "" {
		printlnFn(p.Bio)
	}
	if len(p.Skills) > 0 {
		printlnFn("Skills: " + strings.Join(p.Skills, ", "))
	}
	printlnFn(fmt.Sprintf("Rate: %.2f/h, rating %.1f", p.HourlyRate, p.Rating))
}
