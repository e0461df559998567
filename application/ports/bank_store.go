package ports

import (
	"context"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
)

// ForestScope narrows a forest listing. An empty scope lists every top-level bank.
type ForestScope struct {
	// OwnerID limits the listing to banks owned by one instructor
	OwnerID string
	// ExamID limits the listing to top-level banks whose tree references the exam
	ExamID string
}

// NewBank is the payload of every create operation
type NewBank struct {
	Name    string
	ExamIDs []string
}

// BankReader is the query side of the path-addressed bank store
type BankReader interface {
	// Forest returns the top-level banks with their full subtrees
	Forest(ctx context.Context, scope ForestScope) ([]hierarchy.RawBank, error)

	// Hierarchy returns one bank, at any depth, with its full subtree
	Hierarchy(ctx context.Context, id valueobjects.BankID) (hierarchy.RawBank, error)
}

// BankWriter is the mutation side. Nested operations take the full ancestor
// path of the affected parent; path[0] must equal rootID.
type BankWriter interface {
	CreateTopLevel(ctx context.Context, ownerID string, bank NewBank) (hierarchy.RawBank, error)
	CreateChild(ctx context.Context, parentID valueobjects.BankID, bank NewBank) (hierarchy.RawBank, error)
	CreateNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, bank NewBank) (hierarchy.RawBank, error)

	RenameTopLevel(ctx context.Context, id valueobjects.BankID, name string) error
	RenameChild(ctx context.Context, parentID, id valueobjects.BankID, name string) error
	RenameNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID, name string) error

	DeleteTopLevel(ctx context.Context, id valueobjects.BankID) error
	DeleteChild(ctx context.Context, parentID, id valueobjects.BankID) error
	DeleteNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID) error
}

// BankStore is the full remote protocol the hierarchy engine targets
type BankStore interface {
	BankReader
	BankWriter
}
