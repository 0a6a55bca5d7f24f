package apply

import (
	"context"
	"fmt"
	"time"

	"letraz-autoapply/internal/logging/types"
)

// Step is one fault-bounded unit of work inside a StepLoop iteration
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// StepLoop runs a fixed sequence of steps a fixed number of times. Each step
// gets its own timeout; its errors and panics are logged and absorbed so the
// loop always spends its whole budget. Only cancellation of the parent
// context stops it early.
type StepLoop struct {
	MaxIterations int
	StepTimeout   time.Duration
	Logger        types.Logger
}

// Run returns the number of completed iterations and the parent context's
// error if it ended the loop
func (l StepLoop) Run(ctx context.Context, steps ...Step) (int, error) {
	for i := 0; i < l.MaxIterations; i++ {
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return i, err
			}
			if err := l.runStep(ctx, step); err != nil {
				l.Logger.Debug("Form step did not complete", map[string]interface{}{
					"iteration": i + 1,
					"step":      step.Name,
					"error":     err.Error(),
				})
			}
		}
	}
	return l.MaxIterations, nil
}

func (l StepLoop) runStep(ctx context.Context, step Step) (err error) {
	stepCtx := ctx
	if l.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, l.StepTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", step.Name, r)
		}
	}()

	return step.Run(stepCtx)
}
