package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/application/ports/mocks"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	"github.com/1CEs/xams-sub001/domain/navigation"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

func newTestSession(t *testing.T, cursor *navigation.Cursor) *Session {
	t.Helper()
	store, _ := seed(t)
	return NewSession(store, cursor, ports.ForestScope{OwnerID: "teacher-1"}, zap.NewNop(), observability.NewMetrics("test"))
}

func names(view View) []string {
	out := make([]string, 0, len(view.Banks))
	for _, b := range view.Banks {
		out = append(out, b.Name)
	}
	return out
}

func TestSessionNavigation(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)

	view, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, navigation.StateRoot, view.State)
	assert.Equal(t, []string{"A", "E"}, names(view))
	assert.Nil(t, view.Current)

	view, err = s.Descend(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, navigation.StateDescended, view.State)
	assert.Equal(t, []string{"B", "D"}, names(view))
	assert.Equal(t, []string{"exam-1"}, view.ExamIDs)

	view, err = s.Descend(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names(view))
	assert.Equal(t, []valueobjects.Breadcrumb{{ID: "b1", Name: "A"}, {ID: "b2", Name: "B"}}, view.Trail)

	view, err = s.JumpTo(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.BankID("b1"), view.Current.ID)
	assert.Len(t, view.Trail, 1)

	view, err = s.JumpTo(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, navigation.StateRoot, view.State)

	_, err = s.JumpTo(ctx, 3)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSessionDescendOnlyIntoListedBanks(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := s.Load(ctx)
	require.NoError(t, err)

	// C exists but is not listed at the root
	view, err := s.Descend(ctx, "b3")
	assert.True(t, pkgerrors.IsStaleReference(err))
	assert.Equal(t, navigation.StateRoot, view.State)
}

func TestSessionCreateInOpenBank(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.Descend(ctx, "b1")
	require.NoError(t, err)
	_, err = s.Descend(ctx, "b2")
	require.NoError(t, err)

	view, created, err := s.Create(ctx, ports.NewBank{Name: "Quiz1"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Quiz1", created.Name)
	assert.Equal(t, []string{"C", "Quiz1"}, names(view))
	assert.Len(t, view.Trail, 2)
}

func TestSessionCreateUnderAndSubtree(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := s.Load(ctx)
	require.NoError(t, err)

	_, created, err := s.CreateUnder(ctx, "b3", ports.NewBank{Name: "Deep"})
	require.NoError(t, err)

	sub, err := s.Subtree(ctx, "b2")
	require.NoError(t, err)
	require.Len(t, sub.SubBanks, 1)
	require.Len(t, sub.SubBanks[0].SubBanks, 1)
	assert.Equal(t, created.ID, sub.SubBanks[0].SubBanks[0].ID)
}

func TestSessionRenameInTrail(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.Descend(ctx, "b1")
	require.NoError(t, err)
	_, err = s.Descend(ctx, "b2")
	require.NoError(t, err)

	view, err := s.Rename(ctx, "b1", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", view.Trail[0].Name)
	assert.Equal(t, valueobjects.BankID("b2"), view.Current.ID)

	// deep rename from the root
	_, err = s.JumpTo(ctx, -1)
	require.NoError(t, err)
	_, err = s.Rename(ctx, "b3", "C2")
	require.NoError(t, err)

	sub, err := s.Subtree(ctx, "b3")
	require.NoError(t, err)
	assert.Equal(t, "C2", sub.Name)
}

func TestSessionDeleteAncestorResetsCursor(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.Descend(ctx, "b1")
	require.NoError(t, err)
	_, err = s.Descend(ctx, "b2")
	require.NoError(t, err)

	view, err := s.Delete(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, navigation.StateRoot, view.State)
	assert.Empty(t, view.Trail)

	_, err = s.Subtree(ctx, "b3")
	assert.True(t, pkgerrors.IsRemoteFailure(err))
}

func TestSessionDeleteStaleReference(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	_, err := s.Load(ctx)
	require.NoError(t, err)

	view, err := s.Delete(ctx, "Z")
	assert.True(t, pkgerrors.IsStaleReference(err))
	assert.Equal(t, []string{"A", "E"}, names(view))
}

func TestSessionRestoredTrailIsValidated(t *testing.T) {
	ctx := context.Background()

	valid, err := navigation.Restore(navigation.Snapshot{Trail: []valueobjects.Breadcrumb{{ID: "b1", Name: "A"}, {ID: "b2", Name: "B"}}})
	require.NoError(t, err)
	s := newTestSession(t, valid)
	view, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, names(view))
	assert.Equal(t, valid.Snapshot(), s.Snapshot())

	stale, err := navigation.Restore(navigation.Snapshot{Trail: []valueobjects.Breadcrumb{{ID: "b1", Name: "A"}, {ID: "gone", Name: "?"}}})
	require.NoError(t, err)
	s = newTestSession(t, stale)
	view, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, navigation.StateRoot, view.State)
	assert.Empty(t, s.Snapshot().Trail)
}

func TestSessionDeleteLastBankEmptiesListing(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestTreeStore(t)
	only, err := store.CreateTopLevel(ctx, "teacher-1", ports.NewBank{Name: "Only"})
	require.NoError(t, err)

	s := NewSession(store, nil, ports.ForestScope{OwnerID: "teacher-1"}, zap.NewNop(), nil)
	view, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Only"}, names(view))

	view, err = s.Delete(ctx, valueobjects.BankID(only.ID))
	require.NoError(t, err)
	assert.Empty(t, view.Banks)
	assert.Empty(t, s.Forest())

	// the bank is gone locally too, so a second delete never reaches the store
	_, err = s.Delete(ctx, valueobjects.BankID(only.ID))
	assert.True(t, pkgerrors.IsStaleReference(err))
}

func TestSessionStaleAbortAdoptsEmptyForest(t *testing.T) {
	ctx := context.Background()
	scope := ports.ForestScope{OwnerID: "teacher-1"}
	store := new(mocks.MockBankStore)
	store.On("Forest", mock.Anything, scope).Return([]hierarchy.RawBank{{ID: "A", BankName: "Algebra"}}, nil).Once()
	store.On("Forest", mock.Anything, scope).Return([]hierarchy.RawBank{}, nil)

	s := NewSession(store, nil, scope, zap.NewNop(), nil)
	view, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, view.Banks, 1)

	view, err = s.Rename(ctx, "Z", "Zeta")
	assert.True(t, pkgerrors.IsStaleReference(err))
	assert.Empty(t, view.Banks)

	_, err = s.Delete(ctx, "A")
	assert.True(t, pkgerrors.IsStaleReference(err))

	store.AssertNotCalled(t, "DeleteTopLevel", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RenameTopLevel", mock.Anything, mock.Anything, mock.Anything)
}

func TestRootViewDoesNotAliasForest(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, nil)
	view, err := s.Load(ctx)
	require.NoError(t, err)

	view.Banks[0].SubBanks[0].Name = "mutated"
	assert.Equal(t, "B", s.View().Banks[0].SubBanks[0].Name)
}
