package script

import (
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/pmkol/sllist/mlog"
	"github.com/pmkol/sllist/pkg/list"
)

var ErrExpectationFailed = errors.New("expectation failed")

// Runner replays scripts against a fresh list.
type Runner struct {
	logger *zap.Logger

	opsTotal       *prometheus.CounterVec
	expectFailures *prometheus.CounterVec
}

// NewRunner creates a Runner. If reg is nil, metrics are
// collected but not registered anywhere.
func NewRunner(logger *zap.Logger, reg prometheus.Registerer) (*Runner, error) {
	if logger == nil {
		logger = mlog.Nop()
	}
	r := &Runner{
		logger: logger,
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ops_total",
			Help: "The total number of list operations executed",
		}, []string{"op"}),
		expectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "step_failures_total",
			Help: "The total number of failed steps",
		}, []string{"op"}),
	}
	if reg != nil {
		for _, c := range [...]prometheus.Collector{r.opsTotal, r.expectFailures} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register metrics: %w", err)
			}
		}
	}
	return r, nil
}

// Run executes steps on an empty list whose element type is named by
// element ("int", "float" or "string"; empty means "int").
// Failed expectations are recorded in the report, not returned as errors.
func (r *Runner) Run(element string, steps []Step) (*Report, error) {
	switch element {
	case "", "int":
		return run(r, "int", steps, toInt)
	case "float":
		return run(r, element, steps, cast.ToFloat64E)
	case "string":
		return run(r, element, steps, cast.ToStringE)
	default:
		return nil, fmt.Errorf("unsupported element type %q", element)
	}
}

// toInt is cast.ToIntE without the silent truncation of fractional numbers.
func toInt(v interface{}) (int, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return cast.ToIntE(v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return cast.ToIntE(v)
}

func run[V constraints.Ordered](r *Runner, element string, steps []Step, parse func(interface{}) (V, error)) (*Report, error) {
	// Compile everything first so a bad script fails before touching the list.
	expects := make([]*expectation, len(steps))
	for i := range steps {
		op := normalizeOp(steps[i].Op)
		if err := checkArgs(op, &steps[i]); err != nil {
			return nil, fmt.Errorf("step #%d: %w", i, err)
		}
		if e := steps[i].Expect; len(e) > 0 {
			exp, err := newExpectation(e)
			if err != nil {
				return nil, fmt.Errorf("step #%d: invalid expect %q, %w", i, e, err)
			}
			expects[i] = exp
		}
	}

	l := list.New[V]()
	rep := &Report{Element: element, Steps: make([]Result, 0, len(steps))}
	cyclic := false
	for i := range steps {
		s := &steps[i]
		res := Result{Step: i, Op: normalizeOp(s.Op), Expect: s.Expect}

		if cyclic && !cycleSafe(res.Op) {
			res.Len = -1
			res.Cycle = true
			res.Reason = "list is cyclic"
			r.fail(rep, &res)
			continue
		}

		if err := apply(l, s, parse, &res); err != nil {
			return nil, fmt.Errorf("step #%d (%s): %w", i, res.Op, err)
		}
		r.opsTotal.WithLabelValues(res.Op).Inc()

		cyclic = l.HasCycle()
		res.Cycle = cyclic
		if cyclic {
			res.Len = -1
		} else {
			res.Len = l.Len()
		}

		res.Passed = true
		if exp := expects[i]; exp != nil {
			if err := exp.check(&res); err != nil {
				res.Passed = false
				res.Reason = err.Error()
			}
		}
		if !res.Passed {
			r.fail(rep, &res)
			continue
		}

		r.logger.Debug(
			"step done",
			zap.Int("step", i),
			zap.String("op", res.Op),
			zap.Any("value", res.Value),
			zap.Bool("ok", res.OK),
			zap.Int("len", res.Len),
		)
		rep.Steps = append(rep.Steps, res)
	}

	if !cyclic {
		rep.Final = l.String()
	}
	r.logger.Info(
		"script finished",
		zap.String("element", element),
		zap.Int("steps", len(steps)),
		zap.Int("failed", rep.Failed),
		zap.String("final", rep.Final),
	)
	return rep, nil
}

func (r *Runner) fail(rep *Report, res *Result) {
	rep.Failed++
	rep.Steps = append(rep.Steps, *res)
	r.expectFailures.WithLabelValues(res.Op).Inc()
	r.logger.Warn(
		"step failed",
		zap.Int("step", res.Step),
		zap.String("op", res.Op),
		zap.String("expect", res.Expect),
		zap.String("reason", res.Reason),
	)
}
