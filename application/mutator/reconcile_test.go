package mutator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/navigation"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

func cursorAt(t *testing.T, ids ...valueobjects.BankID) *navigation.Cursor {
	t.Helper()
	c := navigation.NewCursor()
	for _, id := range ids {
		require.NoError(t, c.Descend(id, string(id)))
	}
	return c
}

func TestReconcileRenameInTrail(t *testing.T) {
	cursor := cursorAt(t, "A", "B", "C")
	req := Request{Op: OpRename, Target: NestedChild{RootID: "A", Path: valueobjects.BankPath{"A"}}, BankID: "B", Name: "NewB"}

	rec := Reconcile(cursor, req)

	assert.True(t, rec.TrailRenamed)
	assert.False(t, rec.CursorReset)
	assert.Equal(t, valueobjects.BankID("A"), rec.Refetch)
	assert.Equal(t, 3, cursor.Depth())
	current, _ := cursor.Current()
	assert.Equal(t, valueobjects.BankID("C"), current)
	assert.Equal(t, "NewB", cursor.Trail()[1].Name)
}

func TestReconcileDeleteInTrailResets(t *testing.T) {
	for _, deleted := range []valueobjects.BankID{"A", "B", "C"} {
		t.Run(string(deleted), func(t *testing.T) {
			cursor := cursorAt(t, "A", "B", "C")

			rec := Reconcile(cursor, Request{Op: OpDelete, Target: TopLevel{}, BankID: deleted})

			assert.True(t, rec.CursorReset)
			assert.Equal(t, navigation.StateRoot, cursor.State())
		})
	}
}

func TestReconcileDeleteOutsideTrailKeepsCursor(t *testing.T) {
	cursor := cursorAt(t, "A", "B")

	rec := Reconcile(cursor, Request{Op: OpDelete, Target: DirectChild{ParentID: "B"}, BankID: "X"})

	assert.False(t, rec.CursorReset)
	assert.Equal(t, 2, cursor.Depth())
	assert.Equal(t, valueobjects.BankID("B"), rec.Refetch)
}

func TestReconcileCreateRefetchesParent(t *testing.T) {
	cursor := cursorAt(t, "A")

	rec := Reconcile(cursor, Request{Op: OpCreate, Target: DirectChild{ParentID: "A"}, Name: "Quiz1"})
	assert.Equal(t, valueobjects.BankID("A"), rec.Refetch)

	rec = Reconcile(cursor, Request{Op: OpCreate, Target: TopLevel{}, Name: "Top"})
	assert.True(t, rec.Refetch.IsZero())
	assert.Equal(t, 1, cursor.Depth())
}

func TestValidateTrail(t *testing.T) {
	forest := deepForest()

	cursor := cursorAt(t, "A", "B", "C")
	assert.NoError(t, ValidateTrail(forest, cursor))
	assert.Equal(t, 3, cursor.Depth())

	// C is not a direct child of A
	broken := cursorAt(t, "A", "C")
	err := ValidateTrail(forest, broken)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCursorDesync(err))
	assert.Equal(t, navigation.StateRoot, broken.State())

	root := navigation.NewCursor()
	assert.NoError(t, ValidateTrail(forest, root))
}
