package mutator

import (
	"context"

	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/entities"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	"github.com/1CEs/xams-sub001/domain/navigation"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// Mutator runs create, rename and delete end to end: plan against the last
// fetched forest, dispatch, reconcile the cursor, then fetch the forest again.
// Nothing is changed locally before the store accepts the request.
type Mutator struct {
	store   ports.BankStore
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Outcome is what a mutation leaves behind
type Outcome struct {
	Request        Request
	Result         Result
	Reconciliation Reconciliation
	// Forest is the freshly fetched forest. It is also set when a stale
	// reference aborted the mutation, so callers can replace their copy.
	Forest entities.Forest
	// Refetched reports that Forest holds a fetch result, which may be empty
	Refetched bool
}

// NewMutator creates a new mutator
func NewMutator(store ports.BankStore, logger *zap.Logger, metrics *observability.Metrics) *Mutator {
	return &Mutator{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Create adds a bank below the cursor's open bank, or at the top level when the
// cursor is at the root.
func (m *Mutator) Create(ctx context.Context, scope ports.ForestScope, cursor *navigation.Cursor, bank ports.NewBank) (Outcome, error) {
	current, _ := cursor.Current()
	return m.execute(ctx, scope, cursor, OpCreate, func() (Request, error) {
		return PlanCreate(current, scope.OwnerID, bank)
	})
}

// CreateUnder adds a bank below parentID wherever it sits in forest
func (m *Mutator) CreateUnder(ctx context.Context, scope ports.ForestScope, forest entities.Forest, cursor *navigation.Cursor, parentID valueobjects.BankID, bank ports.NewBank) (Outcome, error) {
	return m.execute(ctx, scope, cursor, OpCreate, func() (Request, error) {
		return PlanCreateUnder(forest, parentID, scope.OwnerID, bank)
	})
}

// Rename renames id, which must be present in forest
func (m *Mutator) Rename(ctx context.Context, scope ports.ForestScope, forest entities.Forest, cursor *navigation.Cursor, id valueobjects.BankID, name string) (Outcome, error) {
	return m.execute(ctx, scope, cursor, OpRename, func() (Request, error) {
		return PlanRename(forest, id, name)
	})
}

// Delete removes id and its subtree
func (m *Mutator) Delete(ctx context.Context, scope ports.ForestScope, forest entities.Forest, cursor *navigation.Cursor, id valueobjects.BankID) (Outcome, error) {
	return m.execute(ctx, scope, cursor, OpDelete, func() (Request, error) {
		return PlanDelete(forest, id)
	})
}

// Refetch loads and normalizes the forest for scope
func (m *Mutator) Refetch(ctx context.Context, scope ports.ForestScope) (entities.Forest, error) {
	raw, err := m.store.Forest(ctx, scope)
	if err != nil {
		return nil, asRemoteFailure("forest", err)
	}
	return hierarchy.Normalize(raw)
}

func (m *Mutator) execute(ctx context.Context, scope ports.ForestScope, cursor *navigation.Cursor, op Operation, plan func() (Request, error)) (Outcome, error) {
	req, err := plan()
	if err != nil {
		if !pkgerrors.IsStaleReference(err) {
			return Outcome{}, err
		}
		return m.abortStale(ctx, scope, cursor, op, err)
	}

	logger := m.logger.With(
		zap.String("operation", string(req.Op)),
		zap.String("endpoint", req.Endpoint()),
		zap.String("bankID", req.BankID.String()),
	)

	result, err := Dispatch(ctx, m.store, req)
	if err != nil {
		m.metrics.RecordMutation(string(req.Op), req.Target.Kind(), "failure")
		logger.Warn("Bank store rejected mutation", zap.Error(err))
		return Outcome{Request: req}, err
	}
	m.metrics.RecordMutation(string(req.Op), req.Target.Kind(), "success")

	out := Outcome{
		Request:        req,
		Result:         result,
		Reconciliation: Reconcile(cursor, req),
	}
	if out.Reconciliation.CursorReset {
		m.metrics.RecordCursorReset("deleted_in_trail")
	}

	logger.Info("Bank mutation applied",
		zap.String("target", req.Target.Kind()),
		zap.String("refetch", out.Reconciliation.Refetch.String()),
		zap.Bool("trailRenamed", out.Reconciliation.TrailRenamed),
		zap.Bool("cursorReset", out.Reconciliation.CursorReset),
	)

	forest, err := m.Refetch(ctx, scope)
	if err != nil {
		logger.Error("Failed to refetch forest after mutation", zap.Error(err))
		return out, err
	}
	out.Forest = forest
	out.Refetched = true

	if err := ValidateTrail(forest, cursor); err != nil {
		m.metrics.RecordCursorReset("desync")
		logger.Warn("Breadcrumb trail no longer resolves, cursor reset", zap.Error(err))
		out.Reconciliation.CursorReset = true
	}
	return out, nil
}

// abortStale handles a target missing from the forest: no store mutation is
// issued, the forest is fetched again from the root and the stale error is
// returned to the caller.
func (m *Mutator) abortStale(ctx context.Context, scope ports.ForestScope, cursor *navigation.Cursor, op Operation, staleErr error) (Outcome, error) {
	m.metrics.RecordStaleReference(string(op))
	m.logger.Warn("Mutation aborted on stale reference",
		zap.String("operation", string(op)),
		zap.Error(staleErr),
	)

	forest, err := m.Refetch(ctx, scope)
	if err != nil {
		m.logger.Error("Failed to refetch forest after stale reference", zap.Error(err))
		return Outcome{}, staleErr
	}
	if err := ValidateTrail(forest, cursor); err != nil {
		m.metrics.RecordCursorReset("desync")
	}
	return Outcome{Forest: forest, Refetched: true}, staleErr
}
