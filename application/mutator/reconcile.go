package mutator

import (
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	"github.com/1CEs/xams-sub001/domain/navigation"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// Reconciliation reports what a successful mutation did to the cursor and
// which listing has to be fetched again.
type Reconciliation struct {
	// Refetch is the parent context whose sub-bank list changed; zero means the forest.
	Refetch valueobjects.BankID
	// TrailRenamed is set when a renamed bank was in the breadcrumb trail
	TrailRenamed bool
	// CursorReset is set when the cursor was sent back to the root
	CursorReset bool
}

// Reconcile brings the cursor in line with a request that the store accepted.
// A renamed bank in the trail keeps its position with the new name; a deleted
// bank anywhere in the trail sends the cursor to the root.
func Reconcile(cursor *navigation.Cursor, req Request) Reconciliation {
	var rec Reconciliation
	if parent, ok := req.Target.ParentContext(); ok {
		rec.Refetch = parent
	}

	switch req.Op {
	case OpRename:
		rec.TrailRenamed = cursor.RenameInTrail(req.BankID, req.Name)
	case OpDelete:
		if cursor.Contains(req.BankID) {
			cursor.ResetToRoot()
			rec.CursorReset = true
		}
	}
	return rec
}

// ValidateTrail checks that the cursor's trail still walks the forest. On a
// mismatch the cursor is reset to the root and a CursorDesync error names the
// first breadcrumb that failed; the trail is never partially repaired.
func ValidateTrail(forest entities.Forest, cursor *navigation.Cursor) error {
	path := cursor.Path()
	for i := range path {
		if _, ok := hierarchy.At(forest, path[:i+1]); !ok {
			cursor.ResetToRoot()
			return pkgerrors.NewCursorDesyncError(path[i].String())
		}
	}
	return nil
}
