package mutator

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/application/ports/mocks"
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	"github.com/1CEs/xams-sub001/domain/navigation"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

var testScope = ports.ForestScope{OwnerID: "teacher-1"}

func newTestMutator(store *mocks.MockBankStore) *Mutator {
	return NewMutator(store, zap.NewNop(), observability.NewMetrics("test"))
}

func writeMethods() []string {
	return []string{
		"CreateTopLevel", "CreateChild", "CreateNested",
		"RenameTopLevel", "RenameChild", "RenameNested",
		"DeleteTopLevel", "DeleteChild", "DeleteNested",
	}
}

func TestCreateInOpenBankUsesDirectChild(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockBankStore)
	cursor := cursorAt(t, "A")

	created := hierarchy.RawBank{ID: "Q1", Name: "Quiz1"}
	after := deepForest()
	after[0].SubBanks = append(after[0].SubBanks, entities.Bank{ID: "Q1", Name: "Quiz1"})

	store.On("CreateChild", mock.Anything, valueobjects.BankID("A"), ports.NewBank{Name: "Quiz1"}).Return(created, nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(after), nil).Once()

	out, err := newTestMutator(store).Create(ctx, testScope, cursor, ports.NewBank{Name: "Quiz1"})
	require.NoError(t, err)

	assert.Equal(t, DirectChild{ParentID: "A"}, out.Request.Target)
	require.NotNil(t, out.Result.Created)
	assert.Equal(t, "Q1", out.Result.Created.ID)
	assert.Equal(t, valueobjects.BankID("A"), out.Reconciliation.Refetch)
	assert.Len(t, out.Forest[0].SubBanks, 2)
	assert.Equal(t, 1, cursor.Depth())

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "CreateNested", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAtRootUsesTopLevel(t *testing.T) {
	store := new(mocks.MockBankStore)
	store.On("CreateTopLevel", mock.Anything, "teacher-1", ports.NewBank{Name: "Finals", ExamIDs: []string{"exam-9"}}).
		Return(hierarchy.RawBank{ID: "F", BankName: "Finals"}, nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(deepForest()), nil).Once()

	out, err := newTestMutator(store).Create(context.Background(), testScope, navigation.NewCursor(),
		ports.NewBank{Name: "Finals", ExamIDs: []string{"exam-9"}})
	require.NoError(t, err)

	assert.Equal(t, TopLevel{}, out.Request.Target)
	assert.True(t, out.Reconciliation.Refetch.IsZero())
	store.AssertExpectations(t)
}

func TestCreateUnderNestedParent(t *testing.T) {
	store := new(mocks.MockBankStore)
	store.On("CreateNested", mock.Anything, valueobjects.BankID("A"), valueobjects.BankPath{"A", "B"}, ports.NewBank{Name: "Deep"}).
		Return(hierarchy.RawBank{ID: "D1", Name: "Deep"}, nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(deepForest()), nil).Once()

	out, err := newTestMutator(store).CreateUnder(context.Background(), testScope, deepForest(), navigation.NewCursor(), "B", ports.NewBank{Name: "Deep"})
	require.NoError(t, err)

	assert.Equal(t, valueobjects.BankID("B"), out.Reconciliation.Refetch)
	store.AssertExpectations(t)
}

func TestRenameDeepBankUsesFullAncestorPath(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := navigation.NewCursor()

	after := deepForest()
	after[0].SubBanks[0].SubBanks[0].Name = "NewC"

	store.On("RenameNested", mock.Anything, valueobjects.BankID("A"), valueobjects.BankPath{"A", "B"}, valueobjects.BankID("C"), "NewC").
		Return(nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(after), nil).Once()

	out, err := newTestMutator(store).Rename(context.Background(), testScope, deepForest(), cursor, "C", "NewC")
	require.NoError(t, err)

	assert.Equal(t, "rename_nested", out.Request.Endpoint())
	assert.Equal(t, valueobjects.BankID("B"), out.Reconciliation.Refetch)
	assert.False(t, out.Reconciliation.TrailRenamed)

	renamed, ok := hierarchy.Find(out.Forest, "C")
	require.True(t, ok)
	assert.Equal(t, "NewC", renamed.Name)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "RenameChild", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "RenameTopLevel", mock.Anything, mock.Anything, mock.Anything)
}

func TestRenameBankInTrailKeepsPosition(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := cursorAt(t, "A", "B")

	after := deepForest()
	after[0].SubBanks[0].Name = "NewB"

	store.On("RenameNested", mock.Anything, valueobjects.BankID("A"), valueobjects.BankPath{"A"}, valueobjects.BankID("B"), "NewB").
		Return(nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(after), nil).Once()

	out, err := newTestMutator(store).Rename(context.Background(), testScope, deepForest(), cursor, "B", "NewB")
	require.NoError(t, err)

	assert.True(t, out.Reconciliation.TrailRenamed)
	assert.False(t, out.Reconciliation.CursorReset)
	assert.Equal(t, []valueobjects.Breadcrumb{{ID: "A", Name: "A"}, {ID: "B", Name: "NewB"}}, cursor.Trail())
	store.AssertExpectations(t)
}

func TestDeleteOpenBankResetsCursor(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := cursorAt(t, "A", "B", "C")

	after := deepForest()
	after[0].SubBanks = nil

	store.On("DeleteNested", mock.Anything, valueobjects.BankID("A"), valueobjects.BankPath{"A"}, valueobjects.BankID("B")).
		Return(nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(after), nil).Once()

	out, err := newTestMutator(store).Delete(context.Background(), testScope, deepForest(), cursor, "B")
	require.NoError(t, err)

	assert.True(t, out.Reconciliation.CursorReset)
	assert.Equal(t, navigation.StateRoot, cursor.State())
	assert.Empty(t, cursor.Trail())
	store.AssertExpectations(t)
}

func TestDeleteStaleTargetIssuesNoWrites(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := cursorAt(t, "A")
	metrics := observability.NewMetrics("test")

	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(deepForest()), nil).Once()

	m := NewMutator(store, zap.NewNop(), metrics)
	out, err := m.Delete(context.Background(), testScope, deepForest(), cursor, "Z")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsStaleReference(err))
	assert.NotNil(t, out.Forest, "forest is fetched again after a stale reference")
	assert.Equal(t, 1, cursor.Depth())

	store.AssertExpectations(t)
	for _, method := range writeMethods() {
		for _, call := range store.Calls {
			assert.NotEqual(t, method, call.Method)
		}
	}
}

func TestRemoteFailureLeavesCursorAlone(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := cursorAt(t, "A", "B")
	cause := stderrors.New("connection reset")

	store.On("RenameNested", mock.Anything, valueobjects.BankID("A"), valueobjects.BankPath{"A"}, valueobjects.BankID("B"), "NewB").
		Return(cause).Once()

	out, err := newTestMutator(store).Rename(context.Background(), testScope, deepForest(), cursor, "B", "NewB")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsRemoteFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, out.Forest)
	assert.Equal(t, "B", cursor.Trail()[1].Name)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Forest", mock.Anything, mock.Anything)
}

func TestValidationErrorSkipsStore(t *testing.T) {
	store := new(mocks.MockBankStore)

	_, err := newTestMutator(store).Rename(context.Background(), testScope, deepForest(), navigation.NewCursor(), "C", " ")

	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, store.Calls)
}

func TestRefetchDesyncResetsCursor(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := cursorAt(t, "A", "B")

	// someone else removed B between our fetch and the rename of E
	after := deepForest()
	after[0].SubBanks = nil

	store.On("RenameTopLevel", mock.Anything, valueobjects.BankID("E"), "NewE").Return(nil).Once()
	store.On("Forest", mock.Anything, testScope).Return(hierarchy.Denormalize(after), nil).Once()

	out, err := newTestMutator(store).Rename(context.Background(), testScope, deepForest(), cursor, "E", "NewE")
	require.NoError(t, err)

	assert.True(t, out.Reconciliation.CursorReset)
	assert.True(t, cursor.AtRoot())
}

func TestMalformedRefetchIsReported(t *testing.T) {
	store := new(mocks.MockBankStore)
	store.On("DeleteTopLevel", mock.Anything, valueobjects.BankID("E")).Return(nil).Once()
	store.On("Forest", mock.Anything, testScope).Return([]hierarchy.RawBank{{BankName: "no id"}}, nil).Once()

	_, err := newTestMutator(store).Delete(context.Background(), testScope, deepForest(), navigation.NewCursor(), "E")

	assert.True(t, pkgerrors.IsMalformedNode(err))
}

func TestDispatchRejectsMissingTarget(t *testing.T) {
	store := new(mocks.MockBankStore)
	_, err := Dispatch(context.Background(), store, Request{Op: OpDelete, BankID: "A"})

	assert.True(t, pkgerrors.IsInternal(err))
	assert.Empty(t, store.Calls)
}

func TestEmptyRefetchIsStillAdopted(t *testing.T) {
	store := new(mocks.MockBankStore)
	cursor := navigation.NewCursor()
	forest := entities.Forest{{ID: "A", Name: "Algebra"}}

	store.On("DeleteTopLevel", mock.Anything, valueobjects.BankID("A")).Return(nil).Once()
	store.On("Forest", mock.Anything, testScope).Return([]hierarchy.RawBank{}, nil).Once()

	out, err := newTestMutator(store).Delete(context.Background(), testScope, forest, cursor, "A")
	require.NoError(t, err)

	assert.True(t, out.Refetched)
	assert.NotNil(t, out.Forest)
	assert.Empty(t, out.Forest)
	store.AssertExpectations(t)
}
