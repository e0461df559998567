package mutator

import (
	"context"
	"fmt"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// Result carries what the store returned for a dispatched request
type Result struct {
	// Created is set for creates
	Created *hierarchy.RawBank
}

// Endpoint names the remote call a request maps to, e.g. "rename_nested".
func (r Request) Endpoint() string {
	switch r.Target.(type) {
	case TopLevel:
		return fmt.Sprintf("%s_top_level", r.Op)
	case DirectChild:
		return fmt.Sprintf("%s_child", r.Op)
	case NestedChild:
		return fmt.Sprintf("%s_nested", r.Op)
	default:
		return string(r.Op)
	}
}

// Dispatch issues req against the store. It is the only place the addressing
// form is branched on. Store failures come back as RemoteFailure with the
// original error as cause; nothing is retried here.
func Dispatch(ctx context.Context, store ports.BankWriter, req Request) (Result, error) {
	var (
		result Result
		err    error
	)

	switch req.Op {
	case OpCreate:
		var created hierarchy.RawBank
		bank := ports.NewBank{Name: req.Name, ExamIDs: req.ExamIDs}
		switch t := req.Target.(type) {
		case TopLevel:
			created, err = store.CreateTopLevel(ctx, req.OwnerID, bank)
		case DirectChild:
			created, err = store.CreateChild(ctx, t.ParentID, bank)
		case NestedChild:
			created, err = store.CreateNested(ctx, t.RootID, t.Path, bank)
		default:
			return Result{}, invalidTarget(req)
		}
		if err == nil {
			result.Created = &created
		}

	case OpRename:
		switch t := req.Target.(type) {
		case TopLevel:
			err = store.RenameTopLevel(ctx, req.BankID, req.Name)
		case DirectChild:
			err = store.RenameChild(ctx, t.ParentID, req.BankID, req.Name)
		case NestedChild:
			err = store.RenameNested(ctx, t.RootID, t.Path, req.BankID, req.Name)
		default:
			return Result{}, invalidTarget(req)
		}

	case OpDelete:
		switch t := req.Target.(type) {
		case TopLevel:
			err = store.DeleteTopLevel(ctx, req.BankID)
		case DirectChild:
			err = store.DeleteChild(ctx, t.ParentID, req.BankID)
		case NestedChild:
			err = store.DeleteNested(ctx, t.RootID, t.Path, req.BankID)
		default:
			return Result{}, invalidTarget(req)
		}

	default:
		return Result{}, pkgerrors.NewInternalError(fmt.Sprintf("unknown operation %q", req.Op))
	}

	if err != nil {
		return Result{}, asRemoteFailure(req.Endpoint(), err)
	}
	return result, nil
}

func invalidTarget(req Request) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("operation %q has no mutation target", req.Op))
}

func asRemoteFailure(operation string, err error) error {
	if pkgerrors.IsRemoteFailure(err) {
		return err
	}
	return pkgerrors.NewRemoteFailureError(operation, err)
}
