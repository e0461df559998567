package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

func TestInsertAt(t *testing.T) {
	forest := sampleForest()

	require.NoError(t, InsertAt(&forest, nil, entities.Bank{ID: "F", Name: "top"}))
	require.NoError(t, InsertAt(&forest, valueobjects.BankPath{"A", "B", "C"}, entities.Bank{ID: "G", Name: "deep"}))

	assert.Len(t, forest, 3)
	path, ok := ResolvePath(forest, "G")
	require.True(t, ok)
	assert.Equal(t, valueobjects.BankPath{"A", "B", "C"}, path)

	err := InsertAt(&forest, valueobjects.BankPath{"A", "C"}, entities.Bank{ID: "H"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRenameAt(t *testing.T) {
	forest := sampleForest()

	require.NoError(t, RenameAt(forest, nil, "E", "Geometry"))
	require.NoError(t, RenameAt(forest, valueobjects.BankPath{"A", "B"}, "C", "NewC"))

	assert.Equal(t, "Geometry", forest[1].Name)
	assert.Equal(t, "NewC", forest[0].SubBanks[0].SubBanks[0].Name)

	assert.True(t, pkgerrors.IsNotFound(RenameAt(forest, valueobjects.BankPath{"A"}, "C", "x")))
	assert.True(t, pkgerrors.IsNotFound(RenameAt(forest, valueobjects.BankPath{"Z"}, "C", "x")))
}

func TestRemoveAt(t *testing.T) {
	forest := sampleForest()

	removed, err := RemoveAt(&forest, valueobjects.BankPath{"A"}, "B")
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.BankID{"B", "C"}, IDs(removed))
	assert.Len(t, forest[0].SubBanks, 1)

	removed, err = RemoveAt(&forest, nil, "E")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.BankID("E"), removed.ID)
	assert.Len(t, forest, 1)

	_, err = RemoveAt(&forest, nil, "E")
	assert.True(t, pkgerrors.IsNotFound(err))
}
