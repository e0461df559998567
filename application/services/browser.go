package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/mutator"
	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	"github.com/1CEs/xams-sub001/domain/navigation"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// View is what a screen renders after every operation
type View struct {
	State navigation.State          `json:"state"`
	Trail []valueobjects.Breadcrumb `json:"trail"`
	// Current is the open bank, nil at the root
	Current *entities.Bank `json:"current,omitempty"`
	// Banks are the banks listed at the cursor: the forest at the root,
	// otherwise the open bank's sub-banks.
	Banks []entities.Bank `json:"banks"`
	// ExamIDs are the exams attached to the open bank
	ExamIDs []string `json:"examIds,omitempty"`
}

// browser is the navigation core shared by the listing screen and the picker.
// It owns a cursor and the last fetched forest; the forest is only ever
// replaced wholesale.
type browser struct {
	reader  ports.BankReader
	cursor  *navigation.Cursor
	scope   ports.ForestScope
	forest  entities.Forest
	logger  *zap.Logger
	metrics *observability.Metrics
}

func newBrowser(reader ports.BankReader, cursor *navigation.Cursor, scope ports.ForestScope, logger *zap.Logger, metrics *observability.Metrics) browser {
	if cursor == nil {
		cursor = navigation.NewCursor()
	}
	return browser{
		reader:  reader,
		cursor:  cursor,
		scope:   scope,
		logger:  logger,
		metrics: metrics,
	}
}

// refresh fetches the forest and checks the trail against it
func (b *browser) refresh(ctx context.Context) error {
	raw, err := b.reader.Forest(ctx, b.scope)
	if err != nil {
		if pkgerrors.IsRemoteFailure(err) {
			return err
		}
		return pkgerrors.NewRemoteFailureError("forest", err)
	}
	forest, err := hierarchy.Normalize(raw)
	if err != nil {
		return err
	}
	b.adopt(forest)
	return nil
}

// adopt installs a freshly fetched forest
func (b *browser) adopt(forest entities.Forest) {
	b.forest = forest
	if err := mutator.ValidateTrail(forest, b.cursor); err != nil {
		b.metrics.RecordCursorReset("desync")
		b.logger.Warn("Breadcrumb trail no longer resolves, cursor reset", zap.Error(err))
	}
}

func (b *browser) view() View {
	v := View{
		State: b.cursor.State(),
		Trail: b.cursor.Trail(),
	}
	if b.cursor.AtRoot() {
		v.Banks = b.forest.Clone()
		return v
	}

	current, ok := hierarchy.At(b.forest, b.cursor.Path())
	if !ok {
		// adopt keeps the trail valid; reaching here means the forest was never loaded
		v.State = navigation.StateRoot
		v.Trail = nil
		v.Banks = b.forest.Clone()
		return v
	}
	bank := current.Clone()
	v.Current = &bank
	v.Banks = bank.SubBanks
	v.ExamIDs = bank.ExamIDs
	return v
}

// descend opens id, which must be listed at the cursor, then fetches again
func (b *browser) descend(ctx context.Context, id valueobjects.BankID) (View, error) {
	level, ok := hierarchy.Walk(b.forest, b.cursor.Path())
	if !ok {
		b.cursor.ResetToRoot()
		return b.view(), pkgerrors.NewCursorDesyncError(id.String())
	}

	var target *entities.Bank
	for i := range level {
		if level[i].ID == id {
			target = &level[i]
			break
		}
	}
	if target == nil {
		return b.view(), pkgerrors.NewStaleReferenceError(id.String())
	}

	if err := b.cursor.Descend(target.ID, target.Name); err != nil {
		return b.view(), pkgerrors.NewValidationError(err.Error())
	}
	if err := b.refresh(ctx); err != nil {
		return b.view(), err
	}
	return b.view(), nil
}

func (b *browser) jumpTo(ctx context.Context, index int) (View, error) {
	if err := b.cursor.JumpTo(index); err != nil {
		return b.view(), pkgerrors.NewValidationError(fmt.Sprintf("cannot jump to breadcrumb: %v", err))
	}
	if err := b.refresh(ctx); err != nil {
		return b.view(), err
	}
	return b.view(), nil
}

func (b *browser) resetToRoot(ctx context.Context) (View, error) {
	b.cursor.ResetToRoot()
	if err := b.refresh(ctx); err != nil {
		return b.view(), err
	}
	return b.view(), nil
}
