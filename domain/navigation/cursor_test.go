package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

func descended(t *testing.T, crumbs ...valueobjects.Breadcrumb) *Cursor {
	t.Helper()
	c := NewCursor()
	for _, crumb := range crumbs {
		require.NoError(t, c.Descend(crumb.ID, crumb.Name))
	}
	return c
}

var (
	crumbA = valueobjects.Breadcrumb{ID: "A", Name: "Algebra"}
	crumbB = valueobjects.Breadcrumb{ID: "B", Name: "Linear"}
	crumbC = valueobjects.Breadcrumb{ID: "C", Name: "Matrices"}
)

func TestNewCursorStartsAtRoot(t *testing.T) {
	c := NewCursor()

	assert.Equal(t, StateRoot, c.State())
	assert.True(t, c.AtRoot())
	_, ok := c.Current()
	assert.False(t, ok)
	assert.Empty(t, c.Trail())
}

func TestDescend(t *testing.T) {
	c := descended(t, crumbA, crumbB)

	assert.Equal(t, StateDescended, c.State())
	assert.Equal(t, 2, c.Depth())
	current, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, valueobjects.BankID("B"), current)
	assert.Equal(t, valueobjects.BankPath{"A", "B"}, c.Path())

	assert.Error(t, c.Descend("", "nameless"))
	assert.Equal(t, 2, c.Depth())
}

func TestJumpTo(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		wantDepth int
		wantErr   bool
	}{
		{name: "first crumb", index: 0, wantDepth: 1},
		{name: "current crumb is a no-op", index: 2, wantDepth: 3},
		{name: "minus one resets", index: -1, wantDepth: 0},
		{name: "past the end", index: 3, wantDepth: 3, wantErr: true},
		{name: "below minus one", index: -2, wantDepth: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := descended(t, crumbA, crumbB, crumbC)

			err := c.JumpTo(tt.index)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIndexOutOfRange)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantDepth, c.Depth())
			if tt.wantDepth > 0 {
				current, _ := c.Current()
				assert.Equal(t, c.Trail()[tt.wantDepth-1].ID, current)
			}
		})
	}
}

func TestJumpThenDescendDoesNotResurrectTruncatedCrumbs(t *testing.T) {
	c := descended(t, crumbA, crumbB, crumbC)

	require.NoError(t, c.JumpTo(0))
	require.NoError(t, c.Descend("D", "Groups"))

	assert.Equal(t, valueobjects.BankPath{"A", "D"}, c.Path())
}

func TestRenameInTrailKeepsPosition(t *testing.T) {
	c := descended(t, crumbA, crumbB, crumbC)
	before, _ := c.Current()

	assert.True(t, c.RenameInTrail("B", "Linear Algebra"))

	after, _ := c.Current()
	assert.Equal(t, before, after)
	assert.Equal(t, 3, c.Depth())
	assert.Equal(t, "Linear Algebra", c.Trail()[1].Name)
	assert.Equal(t, "Algebra", c.Trail()[0].Name)
	assert.Equal(t, "Matrices", c.Trail()[2].Name)

	assert.False(t, c.RenameInTrail("Z", "nope"))
}

func TestTrailIsACopy(t *testing.T) {
	c := descended(t, crumbA)

	trail := c.Trail()
	trail[0].Name = "mutated"

	assert.Equal(t, "Algebra", c.Trail()[0].Name)
}

func TestResetToRoot(t *testing.T) {
	c := descended(t, crumbA, crumbB)
	require.True(t, c.Contains("A"))

	c.ResetToRoot()

	assert.Equal(t, StateRoot, c.State())
	assert.False(t, c.Contains("A"))
}

func TestSnapshotRoundTripsThroughYAML(t *testing.T) {
	c := descended(t, crumbA, crumbB)

	data, err := yaml.Marshal(c.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, yaml.Unmarshal(data, &snap))
	restored, err := Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, c.Trail(), restored.Trail())

	_, err = Restore(Snapshot{Trail: []valueobjects.Breadcrumb{{Name: "no id"}}})
	assert.Error(t, err)
}
