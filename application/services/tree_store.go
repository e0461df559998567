package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/events"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// TreeStore serves the path-addressed bank protocol on top of a RootRepository.
// Every mutation loads one top-level tree, edits it in memory and saves it
// back under an optimistic version check.
type TreeStore struct {
	repo      ports.RootRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
	newID     func() valueobjects.BankID
	now       func() time.Time
}

// NewTreeStore creates a new tree store
func NewTreeStore(repo ports.RootRepository, publisher ports.EventPublisher, logger *zap.Logger) *TreeStore {
	return &TreeStore{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		newID:     valueobjects.NewBankID,
		now:       time.Now,
	}
}

var _ ports.BankStore = (*TreeStore)(nil)

// Forest lists top-level banks. With an exam scope only trees referencing the
// exam somewhere are returned.
func (s *TreeStore) Forest(ctx context.Context, scope ports.ForestScope) ([]hierarchy.RawBank, error) {
	trees, err := s.repo.ListRoots(ctx, scope.OwnerID)
	if err != nil {
		return nil, err
	}

	forest := make(entities.Forest, 0, len(trees))
	for _, tree := range trees {
		if scope.ExamID != "" && !referencesExam(tree.Bank, scope.ExamID) {
			continue
		}
		forest = append(forest, tree.Bank)
	}
	return hierarchy.Denormalize(forest), nil
}

// Hierarchy returns a bank at any depth with its subtree, labelled for its depth
func (s *TreeStore) Hierarchy(ctx context.Context, id valueobjects.BankID) (hierarchy.RawBank, error) {
	tree, err := s.treeOf(ctx, id)
	if err != nil {
		return hierarchy.RawBank{}, err
	}
	forest := entities.Forest{tree.Bank}
	path, ok := hierarchy.ResolvePath(forest, id)
	if !ok {
		return hierarchy.RawBank{}, pkgerrors.NewNotFoundError("bank '" + id.String() + "'")
	}
	bank, _ := hierarchy.At(forest, path.Append(id))
	return hierarchy.DenormalizeBank(*bank, len(path)), nil
}

// CreateTopLevel starts a new tree
func (s *TreeStore) CreateTopLevel(ctx context.Context, ownerID string, bank ports.NewBank) (hierarchy.RawBank, error) {
	now := s.now()
	created := s.newBank(bank)
	tree := ports.RootTree{
		OwnerID:   ownerID,
		Bank:      created,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertRoot(ctx, tree); err != nil {
		return hierarchy.RawBank{}, err
	}

	s.publish(ctx, events.NewBankCreated(created.ID, created.ID, nil, created.Name, now))
	return hierarchy.DenormalizeBank(created, 0), nil
}

// CreateChild adds a bank below parentID, wherever parentID sits
func (s *TreeStore) CreateChild(ctx context.Context, parentID valueobjects.BankID, bank ports.NewBank) (hierarchy.RawBank, error) {
	tree, err := s.treeOf(ctx, parentID)
	if err != nil {
		return hierarchy.RawBank{}, err
	}
	parentPath, err := pathTo(tree, parentID)
	if err != nil {
		return hierarchy.RawBank{}, err
	}
	return s.insert(ctx, tree, parentPath, bank)
}

// CreateNested adds a bank below the parent reached by path
func (s *TreeStore) CreateNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, bank ports.NewBank) (hierarchy.RawBank, error) {
	tree, err := s.loadForPath(ctx, rootID, path)
	if err != nil {
		return hierarchy.RawBank{}, err
	}
	return s.insert(ctx, tree, path, bank)
}

// RenameTopLevel renames a top-level bank
func (s *TreeStore) RenameTopLevel(ctx context.Context, id valueobjects.BankID, name string) error {
	tree, err := s.repo.LoadRoot(ctx, id)
	if err != nil {
		return err
	}
	return s.rename(ctx, tree, nil, id, name)
}

// RenameChild renames id, which must be a direct sub-bank of parentID
func (s *TreeStore) RenameChild(ctx context.Context, parentID, id valueobjects.BankID, name string) error {
	tree, err := s.treeOf(ctx, parentID)
	if err != nil {
		return err
	}
	parentPath, err := pathTo(tree, parentID)
	if err != nil {
		return err
	}
	return s.rename(ctx, tree, parentPath, id, name)
}

// RenameNested renames id below the parent reached by path
func (s *TreeStore) RenameNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID, name string) error {
	tree, err := s.loadForPath(ctx, rootID, path)
	if err != nil {
		return err
	}
	return s.rename(ctx, tree, path, id, name)
}

// DeleteTopLevel removes a whole tree
func (s *TreeStore) DeleteTopLevel(ctx context.Context, id valueobjects.BankID) error {
	tree, err := s.repo.LoadRoot(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRoot(ctx, tree); err != nil {
		return err
	}
	s.publish(ctx, events.NewBankDeleted(id, id, nil, tree.Bank.Size(), s.now()))
	return nil
}

// DeleteChild removes id, a direct sub-bank of parentID, with its subtree
func (s *TreeStore) DeleteChild(ctx context.Context, parentID, id valueobjects.BankID) error {
	tree, err := s.treeOf(ctx, parentID)
	if err != nil {
		return err
	}
	parentPath, err := pathTo(tree, parentID)
	if err != nil {
		return err
	}
	return s.remove(ctx, tree, parentPath, id)
}

// DeleteNested removes id below the parent reached by path
func (s *TreeStore) DeleteNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID) error {
	tree, err := s.loadForPath(ctx, rootID, path)
	if err != nil {
		return err
	}
	return s.remove(ctx, tree, path, id)
}

func (s *TreeStore) insert(ctx context.Context, tree ports.RootTree, parentPath valueobjects.BankPath, bank ports.NewBank) (hierarchy.RawBank, error) {
	created := s.newBank(bank)
	forest := entities.Forest{tree.Bank}
	if err := hierarchy.InsertAt(&forest, parentPath, created); err != nil {
		return hierarchy.RawBank{}, err
	}

	if err := s.save(ctx, tree, forest[0], []valueobjects.BankID{created.ID}, nil); err != nil {
		return hierarchy.RawBank{}, err
	}

	s.publish(ctx, events.NewBankCreated(created.ID, tree.Bank.ID, parentPath, created.Name, s.now()))
	return hierarchy.DenormalizeBank(created, len(parentPath)), nil
}

func (s *TreeStore) rename(ctx context.Context, tree ports.RootTree, parentPath valueobjects.BankPath, id valueobjects.BankID, name string) error {
	forest := entities.Forest{tree.Bank}
	if err := hierarchy.RenameAt(forest, parentPath, id, name); err != nil {
		return err
	}
	if err := s.save(ctx, tree, forest[0], nil, nil); err != nil {
		return err
	}

	s.publish(ctx, events.NewBankRenamed(id, tree.Bank.ID, parentPath, name, s.now()))
	return nil
}

func (s *TreeStore) remove(ctx context.Context, tree ports.RootTree, parentPath valueobjects.BankPath, id valueobjects.BankID) error {
	forest := entities.Forest{tree.Bank}
	removed, err := hierarchy.RemoveAt(&forest, parentPath, id)
	if err != nil {
		return err
	}
	removedIDs := hierarchy.IDs(removed)
	if err := s.save(ctx, tree, forest[0], nil, removedIDs); err != nil {
		return err
	}

	s.publish(ctx, events.NewBankDeleted(id, tree.Bank.ID, parentPath, len(removedIDs), s.now()))
	return nil
}

func (s *TreeStore) save(ctx context.Context, tree ports.RootTree, root entities.Bank, added, removed []valueobjects.BankID) error {
	tree.Bank = root
	tree.Version++
	tree.UpdatedAt = s.now()
	return pkgerrors.Wrapf(s.repo.SaveRoot(ctx, tree, added, removed), "save tree %s", root.ID)
}

func (s *TreeStore) treeOf(ctx context.Context, id valueobjects.BankID) (ports.RootTree, error) {
	rootID, err := s.repo.RootOf(ctx, id)
	if err != nil {
		return ports.RootTree{}, err
	}
	return s.repo.LoadRoot(ctx, rootID)
}

func (s *TreeStore) loadForPath(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath) (ports.RootTree, error) {
	if len(path) == 0 || path.Root() != rootID {
		return ports.RootTree{}, pkgerrors.NewValidationError("nested path must start with the root bank id")
	}
	return s.repo.LoadRoot(ctx, rootID)
}

func (s *TreeStore) newBank(bank ports.NewBank) entities.Bank {
	created := entities.Bank{ID: s.newID(), Name: bank.Name}
	if len(bank.ExamIDs) > 0 {
		created.ExamIDs = append([]string(nil), bank.ExamIDs...)
	}
	return created
}

func (s *TreeStore) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish bank event",
			zap.String("eventType", event.GetEventType()),
			zap.String("bankID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

// pathTo returns the full path to id inside tree, id included.
func pathTo(tree ports.RootTree, id valueobjects.BankID) (valueobjects.BankPath, error) {
	ancestors, ok := hierarchy.ResolvePath(entities.Forest{tree.Bank}, id)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("bank '" + id.String() + "'")
	}
	return ancestors.Append(id), nil
}

func referencesExam(bank entities.Bank, examID string) bool {
	if bank.HasExam(examID) {
		return true
	}
	for i := range bank.SubBanks {
		if referencesExam(bank.SubBanks[i], examID) {
			return true
		}
	}
	return false
}
