package hierarchy

import (
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// ResolvePath returns the ids strictly above target, starting at the top-level
// ancestor. The path is empty for a top-level bank. ok is false when target is
// absent from the forest. Search is depth-first in document order.
func ResolvePath(forest entities.Forest, target valueobjects.BankID) (valueobjects.BankPath, bool) {
	return resolve(forest, target, valueobjects.BankPath{})
}

func resolve(level []entities.Bank, target valueobjects.BankID, path valueobjects.BankPath) (valueobjects.BankPath, bool) {
	for i := range level {
		if level[i].ID == target {
			return path, true
		}
		if found, ok := resolve(level[i].SubBanks, target, path.Append(level[i].ID)); ok {
			return found, true
		}
	}
	return nil, false
}

// Walk follows path from the forest root and returns the level of banks
// directly below the last id. An empty path yields the forest itself.
func Walk(forest entities.Forest, path valueobjects.BankPath) ([]entities.Bank, bool) {
	level := []entities.Bank(forest)
	for _, id := range path {
		bank := findIn(level, id)
		if bank == nil {
			return nil, false
		}
		level = bank.SubBanks
	}
	return level, true
}

// At returns the bank reached by following path, where path ends with the bank
// itself. It is how a breadcrumb trail is checked against the forest.
func At(forest entities.Forest, path valueobjects.BankPath) (*entities.Bank, bool) {
	if len(path) == 0 {
		return nil, false
	}
	level, ok := Walk(forest, path[:len(path)-1])
	if !ok {
		return nil, false
	}
	bank := findIn(level, path.Last())
	return bank, bank != nil
}

// Find locates a bank anywhere in the forest. The returned pointer aliases the
// forest, so edits through it are visible to the caller.
func Find(forest entities.Forest, id valueobjects.BankID) (*entities.Bank, bool) {
	path, ok := ResolvePath(forest, id)
	if !ok {
		return nil, false
	}
	level, _ := Walk(forest, path)
	return findIn(level, id), true
}

// IDs lists the bank and every id below it, parents before children.
func IDs(bank entities.Bank) []valueobjects.BankID {
	ids := []valueobjects.BankID{bank.ID}
	for i := range bank.SubBanks {
		ids = append(ids, IDs(bank.SubBanks[i])...)
	}
	return ids
}

func findIn(level []entities.Bank, id valueobjects.BankID) *entities.Bank {
	for i := range level {
		if level[i].ID == id {
			return &level[i]
		}
	}
	return nil
}
