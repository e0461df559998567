package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBankIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		bank Bank
		want bool
	}{
		{name: "no exams no sub-banks", bank: Bank{ID: "A"}, want: true},
		{name: "exams only", bank: Bank{ID: "A", ExamIDs: []string{"e1"}}, want: false},
		{name: "sub-banks only", bank: Bank{ID: "A", SubBanks: []Bank{{ID: "B"}}}, want: false},
		{name: "both", bank: Bank{ID: "A", ExamIDs: []string{"e1"}, SubBanks: []Bank{{ID: "B"}}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bank.IsEmpty())
		})
	}
}

func TestBankEqualsByID(t *testing.T) {
	a := Bank{ID: "A", Name: "Algebra"}
	renamed := Bank{ID: "A", Name: "Linear Algebra"}

	assert.True(t, a.Equals(renamed))
	assert.False(t, a.Equals(Bank{ID: "B", Name: "Algebra"}))
}

func TestCloneIsDeep(t *testing.T) {
	forest := Forest{
		{ID: "A", Name: "A", ExamIDs: []string{"e1"}, SubBanks: []Bank{{ID: "B", Name: "B"}}},
	}

	clone := forest.Clone()
	clone[0].SubBanks[0].Name = "changed"
	clone[0].ExamIDs[0] = "e9"

	assert.Equal(t, "B", forest[0].SubBanks[0].Name)
	assert.Equal(t, "e1", forest[0].ExamIDs[0])
	assert.Equal(t, 2, forest.Size())
	assert.True(t, forest[0].HasExam("e1"))
}
