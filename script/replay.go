package script

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/errors"
	"github.com/wippyai/wasm-dom/event"
)

// Runner executes steps. *runtime.Runtime implements it.
type Runner interface {
	Dispatch(ctx context.Context, targetID string, ev *event.Event) (bool, error)
	Update(fn func(doc *dom.Document))
	Step(ctx context.Context, dt float64) (bool, error)
}

// DefaultDT is the frame time of frame steps without dt, in milliseconds.
const DefaultDT = 1000.0 / 60

// Result is the outcome of one step.
type Result struct {
	Type        string
	Target      string
	Index       int
	Frames      int
	NotCanceled bool
}

// Replay runs the script's steps in order and stops at the first failure.
// Results of completed steps are returned with the error.
func Replay(ctx context.Context, r Runner, s *Script) ([]Result, error) {
	log := Logger().With(zap.String("component", "script"), zap.String("script", s.Name))
	results := make([]Result, 0, len(s.Steps))

	for i := range s.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		st := &s.Steps[i]
		res, err := replayStep(ctx, r, st, i)
		if err != nil {
			log.Error("step failed", zap.Int("step", i), zap.String("type", st.Type), zap.Error(err))
			return results, err
		}
		log.Debug("step done",
			zap.Int("step", i),
			zap.String("type", res.Type),
			zap.String("target", res.Target),
			zap.Bool("not_canceled", res.NotCanceled),
			zap.Int("frames", res.Frames))
		results = append(results, res)
	}
	return results, nil
}

func replayStep(ctx context.Context, r Runner, st *Step, i int) (Result, error) {
	res := Result{Index: i, Type: st.Type}
	ev, err := st.Event()
	if err != nil {
		return res, err
	}

	if ev != nil {
		res.Target = st.TargetID()
		var missing bool
		r.Update(func(doc *dom.Document) {
			if st.Scroll != nil {
				doc.Window().ScrollTo(st.Scroll.X, st.Scroll.Y)
			}
			if st.Hidden != nil {
				doc.SetHidden(*st.Hidden)
			}
			if st.Value != nil {
				el, ok := doc.Element(st.Target)
				if !ok {
					missing = true
					return
				}
				el.SetValue(*st.Value)
			}
		})
		if missing {
			return res, errors.NotFound(errors.PhaseDispatch, "element", st.Target)
		}

		res.NotCanceled, err = r.Dispatch(ctx, res.Target, ev)
		if err != nil {
			return res, err
		}
		if st.Expect != nil && st.Expect.Canceled == res.NotCanceled {
			return res, errors.New(errors.PhaseDispatch, errors.KindInvalidData).
				Path("steps", st.Type).
				Value(i).
				Detail("step %d: canceled = %t, expected %t", i, !res.NotCanceled, st.Expect.Canceled).
				Build()
		}
	}

	dt := st.DT
	if dt <= 0 {
		dt = DefaultDT
	}
	for res.Frames < st.Frames {
		more, err := r.Step(ctx, dt)
		if err != nil {
			return res, err
		}
		res.Frames++
		if !more {
			break
		}
	}
	return res, nil
}
