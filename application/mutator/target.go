// Package mutator turns user intents on the bank hierarchy into correctly
// addressed store calls and keeps the navigation cursor consistent afterwards.
package mutator

import (
	"fmt"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// MutationTarget says how the store must address the parent of the bank an
// operation affects. It is one of TopLevel, DirectChild or NestedChild.
type MutationTarget interface {
	// ParentContext is the bank whose list of sub-banks the operation changes;
	// ok is false when that list is the forest itself.
	ParentContext() (valueobjects.BankID, bool)
	// Kind is a short label used in logs and metrics
	Kind() string

	isMutationTarget()
}

// TopLevel addresses the forest: the affected bank has no parent.
type TopLevel struct{}

// DirectChild addresses a parent by id alone. Only the bank the user has open
// is addressed this way.
type DirectChild struct {
	ParentID valueobjects.BankID
}

// NestedChild addresses a parent through its full ancestor path. Path starts
// with RootID and ends with the parent itself.
type NestedChild struct {
	RootID valueobjects.BankID
	Path   valueobjects.BankPath
}

func (TopLevel) ParentContext() (valueobjects.BankID, bool) { return "", false }
func (TopLevel) Kind() string                                { return "top_level" }
func (TopLevel) isMutationTarget()                           {}
func (TopLevel) String() string                              { return "top-level" }

func (t DirectChild) ParentContext() (valueobjects.BankID, bool) { return t.ParentID, true }
func (DirectChild) Kind() string                                  { return "direct_child" }
func (DirectChild) isMutationTarget()                             {}
func (t DirectChild) String() string                              { return fmt.Sprintf("child of %s", t.ParentID) }

func (t NestedChild) ParentContext() (valueobjects.BankID, bool) { return t.Path.Last(), true }
func (NestedChild) Kind() string                                  { return "nested" }
func (NestedChild) isMutationTarget()                             {}
func (t NestedChild) String() string                              { return fmt.Sprintf("nested under %s", t.Path) }

// targetFromPath picks the addressing form for a bank whose ancestors are path.
// An empty path means the cheap top-level form.
func targetFromPath(path valueobjects.BankPath) MutationTarget {
	if len(path) == 0 {
		return TopLevel{}
	}
	return NestedChild{RootID: path.Root(), Path: path}
}
