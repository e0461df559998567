package mutator

import (
	"strings"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// Operation names a mutation
type Operation string

const (
	OpCreate Operation = "create"
	OpRename Operation = "rename"
	OpDelete Operation = "delete"
)

// MaxNameLength bounds bank names
const MaxNameLength = 200

// Request is a fully addressed store call, ready for Dispatch.
type Request struct {
	Op     Operation
	Target MutationTarget
	// BankID is the renamed or deleted bank; zero for creates.
	BankID valueobjects.BankID
	// Name is the new name for creates and renames
	Name string
	// ExamIDs are attached to a created bank
	ExamIDs []string
	// OwnerID is recorded on top-level creates
	OwnerID string
}

// PlanCreate plans a bank below the currently open bank. A zero current id
// means the cursor is at the root and the bank becomes top-level. No path is
// resolved: the open bank is always addressable directly.
func PlanCreate(current valueobjects.BankID, ownerID string, bank ports.NewBank) (Request, error) {
	name, err := cleanName(bank.Name)
	if err != nil {
		return Request{}, err
	}

	req := Request{Op: OpCreate, Name: name, ExamIDs: bank.ExamIDs, OwnerID: ownerID}
	if current.IsZero() {
		req.Target = TopLevel{}
	} else {
		req.Target = DirectChild{ParentID: current}
	}
	return req, nil
}

// PlanCreateUnder plans a bank below an arbitrary parent, which need not be
// open. A top-level parent is addressed directly, deeper ones by path.
func PlanCreateUnder(forest entities.Forest, parentID valueobjects.BankID, ownerID string, bank ports.NewBank) (Request, error) {
	name, err := cleanName(bank.Name)
	if err != nil {
		return Request{}, err
	}

	ancestors, ok := hierarchy.ResolvePath(forest, parentID)
	if !ok {
		return Request{}, pkgerrors.NewStaleReferenceError(parentID.String())
	}

	req := Request{Op: OpCreate, Name: name, ExamIDs: bank.ExamIDs, OwnerID: ownerID}
	if len(ancestors) == 0 {
		req.Target = DirectChild{ParentID: parentID}
	} else {
		path := ancestors.Append(parentID)
		req.Target = NestedChild{RootID: path.Root(), Path: path}
	}
	return req, nil
}

// PlanRename resolves target in forest and plans its rename
func PlanRename(forest entities.Forest, target valueobjects.BankID, newName string) (Request, error) {
	name, err := cleanName(newName)
	if err != nil {
		return Request{}, err
	}

	path, ok := hierarchy.ResolvePath(forest, target)
	if !ok {
		return Request{}, pkgerrors.NewStaleReferenceError(target.String())
	}
	return Request{Op: OpRename, Target: targetFromPath(path), BankID: target, Name: name}, nil
}

// PlanDelete resolves target in forest and plans its removal
func PlanDelete(forest entities.Forest, target valueobjects.BankID) (Request, error) {
	path, ok := hierarchy.ResolvePath(forest, target)
	if !ok {
		return Request{}, pkgerrors.NewStaleReferenceError(target.String())
	}
	return Request{Op: OpDelete, Target: targetFromPath(path), BankID: target}, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", pkgerrors.NewValidationError("bank name is required")
	}
	if len(name) > MaxNameLength {
		return "", pkgerrors.NewValidationError("bank name must be at most 200 characters")
	}
	return name, nil
}
