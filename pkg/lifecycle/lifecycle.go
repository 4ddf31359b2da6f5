// Package lifecycle runs the monthly period boundary: the responsibility matrix is reset
// and the audit log is emptied once per calendar month.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/audit"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// ErrUnknownTask is returned by ToggleTask when the role or task does not exist.
var ErrUnknownTask = errors.New("unknown matrix task")

// PeriodKey identifies the calendar month of t as "<zero-based month>-<year>".
func PeriodKey(t time.Time) string {
	return fmt.Sprintf("%d-%d", int(t.Month())-1, t.Year())
}

// Scheduler owns the matrix and the reset watermark.
type Scheduler struct {
	medium    medium.Medium
	log       *audit.Log
	clock     clock.Clock
	logger    *zap.Logger
	matrix    string
	watermark string

	mu sync.Mutex // serializes reconciles within this process
}

// New returns a scheduler over m.
func New(m medium.Medium, ks schema.Keyspace, log *audit.Log, c clock.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		medium:    m,
		log:       log,
		clock:     clock.Or(c),
		logger:    logging.OrNop(logger),
		matrix:    ks.Key(schema.Matrix),
		watermark: ks.Key(schema.LastResetWatermark),
	}
}

// Watermark returns the period key of the last completed reset, or "" if none ran yet.
func (s *Scheduler) Watermark() string {
	raw, err := s.medium.Get(s.watermark)
	if err != nil {
		return ""
	}
	return raw
}

// Reconcile runs the boundary procedure if the watermark differs from now's period.
// It returns the current matrix and whether a reset happened. Running it twice in
// the same period is a no-op the second time.
func (s *Scheduler) Reconcile(now time.Time) ([]schema.MatrixRole, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := PeriodKey(now)
	stored, ok := s.stored()
	if s.Watermark() == current {
		if !ok {
			return DefaultMatrix(), false, nil
		}
		return stored, false, nil
	}
	if !ok {
		stored = DefaultMatrix()
	}

	// 1. The previous period's activity is discarded
	if err := s.log.Clear(); err != nil {
		return nil, false, fmt.Errorf("clear audit log: %w", err)
	}

	// 2. Every duty starts the period undone
	reset := schema.CloneMatrix(stored)
	for i := range reset {
		for j := range reset[i].Tasks {
			reset[i].Tasks[j].Completed = false
		}
	}
	if err := s.SaveMatrix(reset); err != nil {
		return nil, false, err
	}

	// 3. Mark the period as handled
	if err := s.medium.Set(s.watermark, current); err != nil {
		return nil, false, fmt.Errorf("save reset watermark: %w", err)
	}

	// 4. Leave a trace of the reset in the fresh log
	if _, err := s.log.Record(schema.CategorySystem, schema.ActionSystem, "Automatic monthly log cleanup",
		"All logs from the previous month were deleted. Cycle start: "+current, schema.SystemIdentity); err != nil {
		return nil, false, fmt.Errorf("audit log cleanup: %w", err)
	}
	if _, err := s.log.Record(schema.CategorySystem, schema.ActionSystem, "Monthly matrix reset",
		"Matrix reset for "+current, schema.SystemIdentity); err != nil {
		return nil, false, fmt.Errorf("audit matrix reset: %w", err)
	}

	s.logger.Info("period reset", zap.String("period", current))
	return reset, true, nil
}

// Matrix returns the matrix for the current period, resetting it first on a boundary.
func (s *Scheduler) Matrix() ([]schema.MatrixRole, error) {
	m, _, err := s.Reconcile(s.clock.Now())
	return m, err
}

// SaveMatrix persists m as is. It is not audited.
func (s *Scheduler) SaveMatrix(m []schema.MatrixRole) error {
	if m == nil {
		m = []schema.MatrixRole{}
	}
	if err := medium.WriteJSON(s.medium, s.matrix, m); err != nil {
		return fmt.Errorf("save matrix: %w", err)
	}
	return nil
}

// ToggleTask flips the completion of one task and returns the saved matrix.
func (s *Scheduler) ToggleTask(roleID, taskID string) ([]schema.MatrixRole, error) {
	m, err := s.Matrix()
	if err != nil {
		return nil, err
	}
	for i := range m {
		if m[i].ID != roleID {
			continue
		}
		for j := range m[i].Tasks {
			if m[i].Tasks[j].ID == taskID {
				m[i].Tasks[j].Completed = !m[i].Tasks[j].Completed
				return m, s.SaveMatrix(m)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownTask, roleID, taskID)
}

func (s *Scheduler) stored() ([]schema.MatrixRole, bool) {
	var m []schema.MatrixRole
	if !medium.ReadJSON(s.medium, s.matrix, &m, s.logger) {
		return nil, false
	}
	return m, true
}
