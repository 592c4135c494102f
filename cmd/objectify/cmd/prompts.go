package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/bias"
	"github.com/f3rmion/objectify/internal/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Output formats
const (
	formatText  = "text"
	formatPlain = "plain"
	formatJSON  = "json"
)

func validateFormat(f string) error {
	switch f {
	case formatText, formatPlain, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, plain or json)", f)
}

// collectPrompts gathers prompts from args, a file of one prompt per line,
// or stdin when args is empty or "-".
func collectPrompts(args []string, file string, stdin io.Reader) ([]string, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening prompt file: %w", err)
		}
		defer f.Close()
		return readPrompts(f)
	}

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		prompt := strings.TrimRight(string(data), "\r\n")
		if strings.TrimSpace(prompt) == "" {
			return nil, api.ErrEmptyPrompt
		}
		return []string{prompt}, nil
	}

	return []string{strings.Join(args, " ")}, nil
}

// inputError turns a collectPrompts failure into the error a command
// returns. Only an empty prompt has a user-facing message; file and stdin
// errors are returned as they are, since no request was sent.
func inputError(err error) error {
	if errors.Is(err, api.ErrEmptyPrompt) {
		return errors.New(api.UserMessage(err, ""))
	}
	return err
}

// readPrompts reads one prompt per non-blank line.
func readPrompts(r io.Reader) ([]string, error) {
	var prompts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading prompts: %w", err)
	}
	if len(prompts) == 0 {
		return nil, api.ErrEmptyPrompt
	}
	return prompts, nil
}

// analyzer is the client surface used by analyze and detect.
type analyzer interface {
	Analyze(ctx context.Context, prompt, axis string) (*bias.Result, error)
	Detect(ctx context.Context, prompt string) (*bias.Detection, error)
}

// outcome is the result of one prompt. Exactly one of result, detection or
// err is set.
type outcome struct {
	prompt    string
	result    *bias.Result
	detection *bias.Detection
	err       error
}

// runAll sends every prompt with at most concurrency requests in flight.
// Outcomes come back in input order; per-prompt failures are recorded, not
// returned.
func runAll(ctx context.Context, prompts []string, concurrency int, logger *zap.Logger,
	call func(ctx context.Context, prompt string) outcome) ([]outcome, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	outs := make([]outcome, len(prompts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range prompts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := call(ctx, p)
			if out.err != nil {
				logger.Warn("prompt failed", zap.Int("index", i), zap.Error(out.err))
				if api.IsCanceled(out.err) {
					return out.err
				}
			}
			outs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

func analyzeCall(client analyzer, axis string) func(context.Context, string) outcome {
	return func(ctx context.Context, prompt string) outcome {
		res, err := client.Analyze(ctx, prompt, axis)
		return outcome{prompt: prompt, result: res, err: err}
	}
}

func detectCall(client analyzer) func(context.Context, string) outcome {
	return func(ctx context.Context, prompt string) outcome {
		det, err := client.Detect(ctx, prompt)
		if det != nil && det.Prompt == "" {
			det.Prompt = prompt
		}
		return outcome{prompt: prompt, detection: det, err: err}
	}
}

// writeOutcomes prints outcomes in the requested format. It returns an error
// when any prompt failed so the process exits non-zero.
func writeOutcomes(w io.Writer, outs []outcome, format string, width int, fallback string) error {
	if format != formatJSON && len(outs) == 1 && outs[0].err != nil {
		return errors.New(api.UserMessage(outs[0].err, fallback))
	}

	failed := 0
	if format == formatJSON {
		reports := make([]render.JSONReport, 0, len(outs))
		for _, o := range outs {
			var r render.JSONReport
			switch {
			case o.err != nil:
				failed++
				r = render.JSONReport{Prompt: o.prompt, Error: api.UserMessage(o.err, fallback)}
			case o.result != nil:
				r = render.NewJSONReport(o.prompt, o.result)
			case o.detection != nil:
				r = render.NewJSONDetection(o.prompt, o.detection)
			}
			reports = append(reports, r)
		}

		var err error
		if len(reports) == 1 {
			err = render.WriteJSON(w, reports[0])
		} else {
			err = render.WriteJSON(w, reports)
		}
		if err != nil {
			return err
		}
	} else {
		opts := render.Options{Width: width, Color: format == formatText}
		for i, o := range outs {
			if i > 0 {
				fmt.Fprintln(w, strings.Repeat("─", min(width, 60)))
			}
			if len(outs) > 1 {
				fmt.Fprintf(w, "[%d] %s\n\n", i+1, render.Truncate(render.Sanitize(o.prompt), width-6))
			}
			switch {
			case o.err != nil:
				failed++
				msg := api.UserMessage(o.err, fallback)
				if opts.Color {
					msg = render.ErrorStyle.Render(msg)
				}
				fmt.Fprintln(w, msg)
			case o.result != nil:
				fmt.Fprint(w, render.Report(o.result, opts))
			case o.detection != nil:
				fmt.Fprint(w, render.DetectionReport(o.detection, opts))
			}
		}
	}

	switch {
	case failed == 0:
		return nil
	case len(outs) == 1:
		return errors.New(api.UserMessage(outs[0].err, fallback))
	default:
		return fmt.Errorf("%d of %d prompts failed", failed, len(outs))
	}
}
