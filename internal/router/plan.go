package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

type StepKind string

const (
	StepTranscribe   StepKind = "transcribe"
	StepAnalyzeImage StepKind = "analyze_image"
	StepRoute        StepKind = "route"
)

// Step is one per-modality action. Lower priority runs first.
type Step struct {
	Kind          StepKind
	Priority      int
	UseTranscript bool
}

type Input struct {
	Text        string
	AudioBase64 string
	ImageBase64 string
}

// Plan expands a request into ordered steps: audio (1), image (2), text (3).
// The route step reads the transcript when the request has audio but no text.
func Plan(in Input) []Step {
	hasText := strings.TrimSpace(in.Text) != ""
	hasAudio := in.AudioBase64 != ""
	hasImage := in.ImageBase64 != ""

	var steps []Step
	if hasAudio {
		steps = append(steps, Step{Kind: StepTranscribe, Priority: 1})
	}
	if hasImage {
		steps = append(steps, Step{Kind: StepAnalyzeImage, Priority: 2})
	}
	if hasText || hasAudio {
		steps = append(steps, Step{Kind: StepRoute, Priority: 3, UseTranscript: !hasText})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Priority < steps[j].Priority })
	return steps
}

// Deps are the per-step operations. A plan step whose dependency is nil is an error.
type Deps struct {
	Transcribe   func(ctx context.Context) (string, error)
	AnalyzeImage func(ctx context.Context) (string, error)
	Route        func(ctx context.Context, text string) Label
}

type Outcome struct {
	Transcript    string
	ImageAnalysis string
	// Text is what the route step classified; empty when it was skipped.
	Text   string
	Label  Label
	Routed bool
}

// Run executes a plan. Transcription and image analysis run concurrently; the
// route step waits for both and is skipped when its input text is empty.
func Run(ctx context.Context, steps []Step, text string, deps Deps) (Outcome, error) {
	var out Outcome
	var route *Step

	for _, step := range steps {
		if step.Kind == StepTranscribe && deps.Transcribe == nil {
			return out, fmt.Errorf("no transcriber configured")
		}
		if step.Kind == StepAnalyzeImage && deps.AnalyzeImage == nil {
			return out, fmt.Errorf("no image analyzer configured")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range steps {
		step := steps[i]
		switch step.Kind {
		case StepTranscribe:
			g.Go(func() error {
				t, err := deps.Transcribe(gctx)
				if err != nil {
					return fmt.Errorf("transcription: %w", err)
				}
				out.Transcript = strings.TrimSpace(t)
				return nil
			})
		case StepAnalyzeImage:
			g.Go(func() error {
				a, err := deps.AnalyzeImage(gctx)
				if err != nil {
					return fmt.Errorf("image analysis: %w", err)
				}
				out.ImageAnalysis = a
				return nil
			})
		case StepRoute:
			route = &step
		}
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	if route == nil || deps.Route == nil {
		return out, nil
	}
	input := text
	if route.UseTranscript {
		input = out.Transcript
	}
	if strings.TrimSpace(input) == "" {
		return out, nil
	}
	out.Text = input
	out.Label = deps.Route(ctx, input)
	out.Routed = true
	return out, nil
}
