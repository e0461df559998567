// Package hierarchy holds the algorithms over the bank tree: normalizing the
// store's wire shape, resolving ancestor paths, and path-addressed edits.
package hierarchy

import (
	"fmt"
	"strings"

	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

// RawBank is a bank as the store serializes it. Top-level banks carry their
// label in bankName, nested banks in name. Nothing past Normalize sees this type.
type RawBank struct {
	ID       string    `json:"_id" dynamodbav:"id"`
	BankName string    `json:"bankName,omitempty" dynamodbav:"bankName,omitempty"`
	Name     string    `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Exams    []string  `json:"exams,omitempty" dynamodbav:"exams,omitempty"`
	SubBanks []RawBank `json:"subBanks,omitempty" dynamodbav:"subBanks,omitempty"`
}

// Label returns the display name for a node found at depth.
// The depth-appropriate field wins; the other one is the fallback.
func (r RawBank) Label(depth int) string {
	if depth == 0 {
		if r.BankName != "" {
			return r.BankName
		}
		return r.Name
	}
	if r.Name != "" {
		return r.Name
	}
	return r.BankName
}

// Normalize converts a raw top-level listing into a Forest, recursing to
// whatever depth the input has. A node without an id fails the whole call;
// nodes are never dropped.
func Normalize(raw []RawBank) (entities.Forest, error) {
	seen := make(map[valueobjects.BankID]struct{})
	banks, err := normalizeLevel(raw, 0, "", seen)
	if err != nil {
		return nil, err
	}
	if banks == nil {
		return entities.Forest{}, nil
	}
	return entities.Forest(banks), nil
}

// NormalizeBank converts a single raw node and its subtree, as returned by a
// hierarchy lookup of a node at any depth.
func NormalizeBank(raw RawBank) (entities.Bank, error) {
	seen := make(map[valueobjects.BankID]struct{})
	return normalizeNode(raw, 0, "", seen)
}

func normalizeLevel(raw []RawBank, depth int, location string, seen map[valueobjects.BankID]struct{}) ([]entities.Bank, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	banks := make([]entities.Bank, 0, len(raw))
	for i, r := range raw {
		bank, err := normalizeNode(r, depth, fmt.Sprintf("%s[%d]", location, i), seen)
		if err != nil {
			return nil, err
		}
		banks = append(banks, bank)
	}
	return banks, nil
}

func normalizeNode(raw RawBank, depth int, location string, seen map[valueobjects.BankID]struct{}) (entities.Bank, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return entities.Bank{}, pkgerrors.NewMalformedNodeError(location, "missing _id")
	}
	id := valueobjects.BankID(raw.ID)
	if _, dup := seen[id]; dup {
		return entities.Bank{}, pkgerrors.NewMalformedNodeError(location, fmt.Sprintf("duplicate _id %q", id))
	}
	seen[id] = struct{}{}

	bank := entities.Bank{
		ID:   id,
		Name: raw.Label(depth),
	}
	if len(raw.Exams) > 0 {
		bank.ExamIDs = append([]string(nil), raw.Exams...)
	}

	subBanks, err := normalizeLevel(raw.SubBanks, depth+1, location+".subBanks", seen)
	if err != nil {
		return entities.Bank{}, err
	}
	bank.SubBanks = subBanks
	return bank, nil
}

// Denormalize renders a forest in the store's wire shape
func Denormalize(forest entities.Forest) []RawBank {
	return denormalizeLevel(forest, 0)
}

// DenormalizeBank renders one bank found at depth, with its subtree
func DenormalizeBank(bank entities.Bank, depth int) RawBank {
	raw := RawBank{ID: bank.ID.String()}
	if depth == 0 {
		raw.BankName = bank.Name
	} else {
		raw.Name = bank.Name
	}
	if len(bank.ExamIDs) > 0 {
		raw.Exams = append([]string(nil), bank.ExamIDs...)
	}
	raw.SubBanks = denormalizeLevel(bank.SubBanks, depth+1)
	return raw
}

func denormalizeLevel(banks []entities.Bank, depth int) []RawBank {
	if len(banks) == 0 {
		return nil
	}
	raw := make([]RawBank, len(banks))
	for i := range banks {
		raw[i] = DenormalizeBank(banks[i], depth)
	}
	return raw
}
