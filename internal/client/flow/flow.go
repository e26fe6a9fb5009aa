// Package flow walks a user through the subscription steps in a terminal,
// submitting each step to the form proxy and advancing only on the
// backend's confirmation.
package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/formresume/internal/client/gateway"
	"github.com/atinyakov/formresume/internal/client/prompt"
	"github.com/atinyakov/formresume/internal/client/resume"
	"github.com/atinyakov/formresume/internal/models"
	"github.com/atinyakov/formresume/internal/steps"
	"go.uber.org/zap"
)

// ErrDeclined is returned when the user declines the checkout step.
var ErrDeclined = errors.New("checkout declined")

// StepSubmitter submits one step; gateway.Gateway implements it.
type StepSubmitter interface {
	SubmitStep(ctx context.Context, sub models.StepSubmission) gateway.StepResult
}

// RefData provides the lists offered on the details step.
type RefData interface {
	States(ctx context.Context) ([]models.State, error)
	Cities(ctx context.Context, state string) ([]models.City, error)
}

// Runner drives one page load of the form.
type Runner struct {
	Orch      *resume.Orchestrator
	Submitter StepSubmitter
	RefData   RefData
	Prompt    *prompt.Prompter
	Out       io.Writer
	Paid      bool
	Log       *zap.Logger
}

// Run resolves the resume decision, then asks for each remaining step
// until the flow completes or input ends.
func (r *Runner) Run(ctx context.Context) error {
	if r.Orch.Check(ctx) == resume.PhaseAwaitingChoice {
		choice, err := r.Prompt.ResumeChoice()
		if err != nil {
			return err
		}
		if choice == prompt.ChoiceContinue {
			err = r.Orch.Continue(ctx)
		} else {
			err = r.Orch.StartNew()
		}
		if err != nil {
			return err
		}
	}
	if msg := r.Orch.Snapshot().Message(); msg != "" {
		fmt.Fprintln(r.Out, msg)
	}

	final := steps.Final(r.Paid)
	for {
		st := r.Orch.Snapshot()
		if st.Completed || st.ActiveStep > final {
			fmt.Fprintln(r.Out, "Your form is complete. Thank you!")
			return nil
		}

		fmt.Fprintln(r.Out, Progress(st.ActiveStep, r.Paid))
		data, err := r.collect(ctx, steps.Step(st.ActiveStep), st.Prefill)
		if err != nil {
			return err
		}

		res := r.Submitter.SubmitStep(ctx, models.StepSubmission{
			SessionID: st.SessionID,
			Step:      st.ActiveStep,
			Plan:      planName(r.Paid),
			Data:      data,
		})
		if !res.OK() {
			fmt.Fprintln(r.Out, res.Failure.Message)
			r.Orch.Discard(res.Failure)
			continue
		}
		if err := r.Orch.Confirm(*res.Confirmation); err != nil {
			return err
		}
	}
}

func (r *Runner) collect(ctx context.Context, step steps.Step, prefill map[string]any) (map[string]any, error) {
	data := map[string]any{}
	ask := func(key, label string) error {
		v, err := r.Prompt.Field(label, prefilled(prefill, key))
		data[key] = v
		return err
	}

	switch step {
	case steps.Email:
		return data, ask("email", "Email")
	case steps.Verify:
		return data, ask("code", "Verification code")
	case steps.Details:
		if err := ask("name", "Full name"); err != nil {
			return nil, err
		}
		state, err := r.Prompt.Select("State", r.stateOptions(ctx), prefilled(prefill, "state"))
		if err != nil {
			return nil, err
		}
		data["state"] = state
		city, err := r.Prompt.Select("City", r.cityOptions(ctx, state), prefilled(prefill, "city"))
		if err != nil {
			return nil, err
		}
		data["city"] = city
		return data, nil
	case steps.Checkout:
		ok, err := r.Prompt.Confirm(fmt.Sprintf("Confirm the %s plan?", planName(r.Paid)))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
		data["plan"] = planName(r.Paid)
		data["confirmed"] = true
		return data, nil
	case steps.Payment:
		// card numbers are never prefilled
		v, err := r.Prompt.Field("Card number", "")
		data["card_number"] = v
		return data, err
	default:
		return nil, fmt.Errorf("unknown step %d", step)
	}
}

// stateOptions falls back to free text when the list cannot be loaded.
func (r *Runner) stateOptions(ctx context.Context) []prompt.Option {
	states, err := r.RefData.States(ctx)
	if err != nil {
		r.Log.Debug("states list unavailable", zap.Error(err))
		return nil
	}
	opts := make([]prompt.Option, 0, len(states))
	for _, s := range states {
		opts = append(opts, prompt.Option{Value: s.Code, Label: s.Name})
	}
	return opts
}

func (r *Runner) cityOptions(ctx context.Context, state string) []prompt.Option {
	cities, err := r.RefData.Cities(ctx, state)
	if err != nil {
		r.Log.Debug("cities list unavailable", zap.String("state", state), zap.Error(err))
		return nil
	}
	opts := make([]prompt.Option, 0, len(cities))
	for _, c := range cities {
		opts = append(opts, prompt.Option{Value: c.Name, Label: c.Name})
	}
	return opts
}

// Progress renders the step markers for the active step index, e.g.
// "[x] Email  [>] Verify Email  [ ] Your Details  [ ] Checkout".
// Marker n stands for step n-1.
func Progress(active int, paid bool) string {
	total := steps.Total(paid)
	parts := make([]string, 0, total)
	for n := 1; n <= total; n++ {
		mark := "[ ]"
		switch {
		case steps.IsCurrent(n, active, total):
			mark = "[>]"
		case n <= active || steps.IsCompleted(n, active, total):
			mark = "[x]"
		}
		parts = append(parts, mark+" "+steps.Label(n-1, paid))
	}
	return strings.Join(parts, "  ")
}

func planName(paid bool) string {
	if paid {
		return "paid"
	}
	return "free"
}

func prefilled(prefill map[string]any, key string) string {
	if v, ok := prefill[key].(string); ok {
		return v
	}
	return ""
}
