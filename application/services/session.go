package services

import (
	"context"

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

// Session is the bank listing screen's engine: navigation plus mutations over
// one forest scope. Calls are expected one at a time, each awaited before the
// next user action.
type Session struct {
	browser
	store   ports.BankStore
	mutator *mutator.Mutator
}

// NewSession creates a session. A nil cursor starts at the root.
func NewSession(store ports.BankStore, cursor *navigation.Cursor, scope ports.ForestScope, logger *zap.Logger, metrics *observability.Metrics) *Session {
	return &Session{
		browser: newBrowser(store, cursor, scope, logger, metrics),
		store:   store,
		mutator: mutator.NewMutator(store, logger, metrics),
	}
}

// Load fetches the forest. A persisted trail that no longer resolves is reset.
func (s *Session) Load(ctx context.Context) (View, error) {
	if err := s.refresh(ctx); err != nil {
		return s.view(), err
	}
	return s.view(), nil
}

// View returns the current state without fetching
func (s *Session) View() View {
	return s.view()
}

// Snapshot captures the cursor for persistence
func (s *Session) Snapshot() navigation.Snapshot {
	return s.cursor.Snapshot()
}

// Forest returns the last fetched forest
func (s *Session) Forest() entities.Forest {
	return s.forest.Clone()
}

// Descend opens a bank listed at the cursor
func (s *Session) Descend(ctx context.Context, id valueobjects.BankID) (View, error) {
	return s.descend(ctx, id)
}

// JumpTo opens the bank at breadcrumb index; -1 returns to the root.
func (s *Session) JumpTo(ctx context.Context, index int) (View, error) {
	return s.jumpTo(ctx, index)
}

// ResetToRoot returns to the forest
func (s *Session) ResetToRoot(ctx context.Context) (View, error) {
	return s.resetToRoot(ctx)
}

// Create adds a bank inside the open bank, or at the top level at the root
func (s *Session) Create(ctx context.Context, bank ports.NewBank) (View, *entities.Bank, error) {
	out, err := s.mutator.Create(ctx, s.scope, s.cursor, bank)
	return s.afterCreate(out, err)
}

// CreateUnder adds a bank below any bank of the fetched forest
func (s *Session) CreateUnder(ctx context.Context, parentID valueobjects.BankID, bank ports.NewBank) (View, *entities.Bank, error) {
	out, err := s.mutator.CreateUnder(ctx, s.scope, s.forest, s.cursor, parentID, bank)
	return s.afterCreate(out, err)
}

// Rename renames a bank anywhere in the fetched forest
func (s *Session) Rename(ctx context.Context, id valueobjects.BankID, name string) (View, error) {
	out, err := s.mutator.Rename(ctx, s.scope, s.forest, s.cursor, id, name)
	return s.after(out, err)
}

// Delete removes a bank and its subtree
func (s *Session) Delete(ctx context.Context, id valueobjects.BankID) (View, error) {
	out, err := s.mutator.Delete(ctx, s.scope, s.forest, s.cursor, id)
	return s.after(out, err)
}

// Subtree fetches one bank with its subtree from the store
func (s *Session) Subtree(ctx context.Context, id valueobjects.BankID) (entities.Bank, error) {
	raw, err := s.store.Hierarchy(ctx, id)
	if err != nil {
		if pkgerrors.IsRemoteFailure(err) {
			return entities.Bank{}, err
		}
		return entities.Bank{}, pkgerrors.NewRemoteFailureError("hierarchy", err)
	}
	return hierarchy.NormalizeBank(raw)
}

func (s *Session) after(out mutator.Outcome, err error) (View, error) {
	if out.Refetched {
		s.adopt(out.Forest)
	}
	return s.view(), err
}

func (s *Session) afterCreate(out mutator.Outcome, err error) (View, *entities.Bank, error) {
	view, err := s.after(out, err)
	if err != nil || out.Result.Created == nil {
		return view, nil, err
	}
	created, nerr := hierarchy.NormalizeBank(*out.Result.Created)
	if nerr != nil {
		return view, nil, nerr
	}
	return view, &created, nil
}
