package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/application/ports/mocks"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/infrastructure/persistence/memory"
)

// newTestTreeStore returns a store over an empty memory repository whose ids
// come out as b1, b2, ... in creation order.
func newTestTreeStore(t *testing.T) (*TreeStore, *mocks.MockEventPublisher) {
	t.Helper()

	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	store := NewTreeStore(memory.NewRootRepository(), publisher, zap.NewNop())
	next := 0
	store.newID = func() valueobjects.BankID {
		next++
		return valueobjects.BankID(fmt.Sprintf("b%d", next))
	}
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return store, publisher
}

// seed builds A{B{C}, D}, E for owner teacher-1 and returns the store.
// Ids: A=b1 B=b2 C=b3 D=b4 E=b5.
func seed(t *testing.T) (*TreeStore, *mocks.MockEventPublisher) {
	t.Helper()
	ctx := context.Background()
	store, publisher := newTestTreeStore(t)

	a, err := store.CreateTopLevel(ctx, "teacher-1", ports.NewBank{Name: "A", ExamIDs: []string{"exam-1"}})
	require.NoError(t, err)
	b, err := store.CreateChild(ctx, valueobjects.BankID(a.ID), ports.NewBank{Name: "B"})
	require.NoError(t, err)
	_, err = store.CreateNested(ctx, valueobjects.BankID(a.ID), valueobjects.BankPath{valueobjects.BankID(a.ID), valueobjects.BankID(b.ID)},
		ports.NewBank{Name: "C", ExamIDs: []string{"exam-2"}})
	require.NoError(t, err)
	_, err = store.CreateChild(ctx, valueobjects.BankID(a.ID), ports.NewBank{Name: "D"})
	require.NoError(t, err)
	_, err = store.CreateTopLevel(ctx, "teacher-1", ports.NewBank{Name: "E"})
	require.NoError(t, err)
	return store, publisher
}
