package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// RootRepository provides an in-memory implementation of ports.RootRepository.
// Trees are deep-copied on the way in and out.
type RootRepository struct {
	mu    sync.RWMutex
	trees map[valueobjects.BankID]ports.RootTree
	index map[valueobjects.BankID]valueobjects.BankID
	order []valueobjects.BankID
}

// NewRootRepository creates a new in-memory root repository
func NewRootRepository() *RootRepository {
	return &RootRepository{
		trees: make(map[valueobjects.BankID]ports.RootTree),
		index: make(map[valueobjects.BankID]valueobjects.BankID),
	}
}

var _ ports.RootRepository = (*RootRepository)(nil)

// ListRoots returns trees in insertion order
func (r *RootRepository) ListRoots(ctx context.Context, ownerID string) ([]ports.RootTree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trees := make([]ports.RootTree, 0, len(r.order))
	for _, id := range r.order {
		tree := r.trees[id]
		if ownerID != "" && tree.OwnerID != ownerID {
			continue
		}
		trees = append(trees, clone(tree))
	}
	return trees, nil
}

// LoadRoot returns a tree by its top-level id
func (r *RootRepository) LoadRoot(ctx context.Context, rootID valueobjects.BankID) (ports.RootTree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tree, ok := r.trees[rootID]
	if !ok {
		return ports.RootTree{}, pkgerrors.NewNotFoundError(fmt.Sprintf("top-level bank '%s'", rootID))
	}
	return clone(tree), nil
}

// RootOf returns the top-level id of the tree containing id
func (r *RootRepository) RootOf(ctx context.Context, id valueobjects.BankID) (valueobjects.BankID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rootID, ok := r.index[id]
	if !ok {
		return "", pkgerrors.NewNotFoundError(fmt.Sprintf("bank '%s'", id))
	}
	return rootID, nil
}

// InsertRoot stores a new tree
func (r *RootRepository) InsertRoot(ctx context.Context, tree ports.RootTree) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rootID := tree.Bank.ID
	if _, exists := r.trees[rootID]; exists {
		return pkgerrors.NewConflictError(fmt.Sprintf("top-level bank '%s' already exists", rootID))
	}

	r.trees[rootID] = clone(tree)
	r.order = append(r.order, rootID)
	for _, id := range hierarchy.IDs(tree.Bank) {
		r.index[id] = rootID
	}
	return nil
}

// SaveRoot replaces a tree under an optimistic version check
func (r *RootRepository) SaveRoot(ctx context.Context, tree ports.RootTree, added, removed []valueobjects.BankID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rootID := tree.Bank.ID
	stored, ok := r.trees[rootID]
	if !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("top-level bank '%s'", rootID))
	}
	if stored.Version != tree.Version-1 {
		return pkgerrors.NewConflictError(fmt.Sprintf("top-level bank '%s' was modified concurrently", rootID))
	}

	r.trees[rootID] = clone(tree)
	for _, id := range added {
		r.index[id] = rootID
	}
	for _, id := range removed {
		delete(r.index, id)
	}
	return nil
}

// DeleteRoot removes a tree and its index entries
func (r *RootRepository) DeleteRoot(ctx context.Context, tree ports.RootTree) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rootID := tree.Bank.ID
	stored, ok := r.trees[rootID]
	if !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("top-level bank '%s'", rootID))
	}

	for _, id := range hierarchy.IDs(stored.Bank) {
		delete(r.index, id)
	}
	delete(r.trees, rootID)

	if i := slices.Index(r.order, rootID); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}

func clone(tree ports.RootTree) ports.RootTree {
	tree.Bank = tree.Bank.Clone()
	return tree
}
