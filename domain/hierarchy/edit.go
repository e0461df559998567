package hierarchy

import (
	"fmt"

	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// InsertAt appends bank below the node addressed by parentPath. An empty
// parentPath appends a top-level bank.
func InsertAt(forest *entities.Forest, parentPath valueobjects.BankPath, bank entities.Bank) error {
	if len(parentPath) == 0 {
		*forest = append(*forest, bank)
		return nil
	}
	parent, ok := At(*forest, parentPath)
	if !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("bank path '%s'", parentPath))
	}
	parent.SubBanks = append(parent.SubBanks, bank)
	return nil
}

// RenameAt renames the bank id found directly below parentPath
func RenameAt(forest entities.Forest, parentPath valueobjects.BankPath, id valueobjects.BankID, name string) error {
	level, ok := Walk(forest, parentPath)
	if !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("bank path '%s'", parentPath))
	}
	bank := findIn(level, id)
	if bank == nil {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("bank '%s' under '%s'", id, parentPath))
	}
	bank.Name = name
	return nil
}

// RemoveAt detaches the bank id found directly below parentPath and returns
// it with its subtree.
func RemoveAt(forest *entities.Forest, parentPath valueobjects.BankPath, id valueobjects.BankID) (entities.Bank, error) {
	if len(parentPath) == 0 {
		removed, rest, ok := without(*forest, id)
		if !ok {
			return entities.Bank{}, pkgerrors.NewNotFoundError(fmt.Sprintf("bank '%s'", id))
		}
		*forest = rest
		return removed, nil
	}

	parent, ok := At(*forest, parentPath)
	if !ok {
		return entities.Bank{}, pkgerrors.NewNotFoundError(fmt.Sprintf("bank path '%s'", parentPath))
	}
	removed, rest, ok := without(parent.SubBanks, id)
	if !ok {
		return entities.Bank{}, pkgerrors.NewNotFoundError(fmt.Sprintf("bank '%s' under '%s'", id, parentPath))
	}
	parent.SubBanks = rest
	return removed, nil
}

func without(level []entities.Bank, id valueobjects.BankID) (entities.Bank, []entities.Bank, bool) {
	for i := range level {
		if level[i].ID == id {
			removed := level[i]
			rest := make([]entities.Bank, 0, len(level)-1)
			rest = append(rest, level[:i]...)
			rest = append(rest, level[i+1:]...)
			return removed, rest, true
		}
	}
	return entities.Bank{}, level, false
}
