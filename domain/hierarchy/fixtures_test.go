package hierarchy

import (
	"fmt"

	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// chain builds a single line of banks B0 -> B1 -> ... of the given length.
func chain(length int) entities.Forest {
	if length == 0 {
		return entities.Forest{}
	}
	var build func(i int) entities.Bank
	build = func(i int) entities.Bank {
		b := entities.Bank{
			ID:   valueobjects.BankID(fmt.Sprintf("B%d", i)),
			Name: fmt.Sprintf("Bank %d", i),
		}
		if i+1 < length {
			b.SubBanks = []entities.Bank{build(i + 1)}
		}
		return b
	}
	return entities.Forest{build(0)}
}

// sampleForest:
//
//	A ─┬─ B ── C
//	   └─ D
//	E
func sampleForest() entities.Forest {
	return entities.Forest{
		{
			ID:      "A",
			Name:    "Algebra",
			ExamIDs: []string{"exam-1"},
			SubBanks: []entities.Bank{
				{ID: "B", Name: "Linear", SubBanks: []entities.Bank{{ID: "C", Name: "Matrices", ExamIDs: []string{"exam-2", "exam-3"}}}},
				{ID: "D", Name: "Groups"},
			},
		},
		{ID: "E", Name: "Empty"},
	}
}
