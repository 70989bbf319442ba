package wizard

import (
	"context"
	"sync"

	apperrors "donasi/internal/errors"
)

// machine holds the step and the lifetime of one wizard. Wizard fields are
// guarded by mu as well.
type machine struct {
	mu         sync.Mutex
	kind       Kind
	step       Step
	submitting bool
	ctx        context.Context
	cancel     context.CancelFunc
}

func (m *machine) init(parent context.Context, kind Kind) {
	if parent == nil {
		parent = context.Background()
	}
	m.kind = kind
	m.step = firstStep[kind]
	m.ctx, m.cancel = context.WithCancel(parent)
}

func (m *machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *machine) Kind() Kind {
	return m.kind
}

// Close discards the wizard and cancels a submission in flight.
func (m *machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.step = StepClosed
	m.cancel()
}

// checkLocked verifies that the wizard is at step and may move to next.
func (m *machine) checkLocked(step, next Step) error {
	if m.step == StepClosed {
		return apperrors.ErrWizardClosed
	}
	if m.submitting {
		return apperrors.ErrSubmitInProgress
	}
	if m.step != step || !Allowed(m.kind, step, next) {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// beginSubmit marks a final submission from step as in flight and returns
// the context it must run under.
func (m *machine) beginSubmit(step Step) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkLocked(step, StepDone); err != nil {
		return nil, err
	}
	m.submitting = true
	return m.ctx, nil
}

// endSubmit clears the in-flight mark. A successful submission finishes the
// wizard unless it was closed meanwhile.
func (m *machine) endSubmit(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submitting = false
	if ok && m.step != StepClosed {
		m.step = StepDone
		m.cancel()
	}
}
