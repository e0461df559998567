package ports

import (
	"context"
	"time"

	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// RootTree is one top-level bank persisted together with its whole subtree
type RootTree struct {
	OwnerID   string
	Bank      entities.Bank
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RootRepository persists top-level trees and keeps an index from every bank
// id to the top-level bank containing it.
type RootRepository interface {
	// ListRoots returns the trees of one owner, or all trees for an empty owner
	ListRoots(ctx context.Context, ownerID string) ([]RootTree, error)

	// LoadRoot returns a tree by its top-level id
	LoadRoot(ctx context.Context, rootID valueobjects.BankID) (RootTree, error)

	// RootOf returns the top-level id of the tree containing id
	RootOf(ctx context.Context, id valueobjects.BankID) (valueobjects.BankID, error)

	// InsertRoot stores a new tree; it fails if the root id exists
	InsertRoot(ctx context.Context, tree RootTree) error

	// SaveRoot replaces a tree whose stored version is tree.Version-1 and
	// updates the index for the added and removed ids.
	SaveRoot(ctx context.Context, tree RootTree, added, removed []valueobjects.BankID) error

	// DeleteRoot removes a tree and every index entry below it
	DeleteRoot(ctx context.Context, tree RootTree) error
}
