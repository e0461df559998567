package entities

import (
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
)

// Bank is a named container in the hierarchy. It holds exam references and
// owns its sub-banks exclusively. The parent is never stored on the child:
// ancestry is derived from the position in the forest.
type Bank struct {
	ID       valueobjects.BankID `json:"id"`
	Name     string              `json:"name"`
	ExamIDs  []string            `json:"examIds"`
	SubBanks []Bank              `json:"subBanks"`
}

// Forest is the ordered list of top-level banks. It has no id or name of its own.
type Forest []Bank

// IsEmpty reports whether the bank holds neither exams nor sub-banks
func (b Bank) IsEmpty() bool {
	return len(b.ExamIDs) == 0 && len(b.SubBanks) == 0
}

// Equals compares banks by identity
func (b Bank) Equals(other Bank) bool {
	return b.ID == other.ID
}

// HasExam reports whether examID is attached directly to this bank
func (b Bank) HasExam(examID string) bool {
	for _, id := range b.ExamIDs {
		if id == examID {
			return true
		}
	}
	return false
}

// Breadcrumb returns the trail entry describing this bank
func (b Bank) Breadcrumb() valueobjects.Breadcrumb {
	return valueobjects.Breadcrumb{ID: b.ID, Name: b.Name}
}

// Clone returns a deep copy of the bank
func (b Bank) Clone() Bank {
	out := Bank{ID: b.ID, Name: b.Name}
	if b.ExamIDs != nil {
		out.ExamIDs = append([]string(nil), b.ExamIDs...)
	}
	if b.SubBanks != nil {
		out.SubBanks = make([]Bank, len(b.SubBanks))
		for i := range b.SubBanks {
			out.SubBanks[i] = b.SubBanks[i].Clone()
		}
	}
	return out
}

// Size counts this bank and every bank below it
func (b Bank) Size() int {
	n := 1
	for i := range b.SubBanks {
		n += b.SubBanks[i].Size()
	}
	return n
}

// Clone returns a deep copy of the forest
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i := range f {
		out[i] = f[i].Clone()
	}
	return out
}

// Size counts every bank in the forest
func (f Forest) Size() int {
	n := 0
	for i := range f {
		n += f[i].Size()
	}
	return n
}
