package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/navigation"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// Selector is the read-only bank picker used when choosing where an exam goes.
// It navigates with its own cursor but the same transitions as Session.
type Selector struct {
	browser
}

// NewSelector creates a picker over scope. A nil cursor starts at the root.
func NewSelector(reader ports.BankReader, cursor *navigation.Cursor, scope ports.ForestScope, logger *zap.Logger, metrics *observability.Metrics) *Selector {
	return &Selector{browser: newBrowser(reader, cursor, scope, logger, metrics)}
}

// Open resets the picker to the root and fetches the forest
func (s *Selector) Open(ctx context.Context) (View, error) {
	return s.resetToRoot(ctx)
}

// Enter opens a bank listed at the cursor
func (s *Selector) Enter(ctx context.Context, id valueobjects.BankID) (View, error) {
	return s.descend(ctx, id)
}

// Back jumps to breadcrumb index; -1 returns to the root.
func (s *Selector) Back(ctx context.Context, index int) (View, error) {
	return s.jumpTo(ctx, index)
}

// Selected returns the open bank; ok is false at the root.
func (s *Selector) Selected() (valueobjects.Breadcrumb, bool) {
	trail := s.cursor.Trail()
	if len(trail) == 0 {
		return valueobjects.Breadcrumb{}, false
	}
	return trail[len(trail)-1], true
}
