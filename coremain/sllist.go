package coremain

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pmkol/sllist/mlog"
	"github.com/pmkol/sllist/pkg/script"
)

type Sllist struct {
	logger     *zap.Logger
	closeLog   func()
	metricsReg *prometheus.Registry
	runner     *script.Runner
}

// NewSllist builds the logger, metrics and runner of cfg.
// Callers must Close it.
func NewSllist(cfg *Config) (*Sllist, error) {
	lg, closeLog, err := mlog.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	m := &Sllist{
		logger:     lg,
		closeLog:   closeLog,
		metricsReg: prometheus.NewRegistry(),
	}
	m.runner, err = script.NewRunner(lg.Named("script"), m.GetMetricsReg())
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to init runner: %w", err)
	}
	return m, nil
}

// Close flushes the logger and releases its log file.
func (m *Sllist) Close() {
	_ = m.logger.Sync()
	m.closeLog()
}

// RunScript runs cfg.Steps and writes the yaml report to out.
// It returns an error wrapping script.ErrExpectationFailed if any step failed.
func RunScript(cfg *Config, out io.Writer) error {
	m, err := NewSllist(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	rep, err := m.runner.Run(cfg.Element, cfg.Steps)
	if err != nil {
		return fmt.Errorf("failed to run script, %w", err)
	}

	b, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report, %w", err)
	}
	if _, err := out.Write(b); err != nil {
		return fmt.Errorf("failed to write report, %w", err)
	}

	m.logMetrics()
	if rep.Failed > 0 {
		return fmt.Errorf("%w: %d of %d steps", script.ErrExpectationFailed, rep.Failed, len(cfg.Steps))
	}
	return nil
}

func (m *Sllist) GetMetricsReg() prometheus.Registerer {
	return prometheus.WrapRegistererWithPrefix("sllist_", m.metricsReg)
}

func (m *Sllist) logMetrics() {
	mfs, err := m.metricsReg.Gather()
	if err != nil {
		m.logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			fields := []zap.Field{zap.Float64("count", metric.GetCounter().GetValue())}
			for _, lp := range metric.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			m.logger.Debug(mf.GetName(), fields...)
		}
	}
}
