package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/events"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func renamed(id string) events.DomainEvent {
	return events.NewBankRenamed(valueobjects.BankID(id), "A", valueobjects.BankPath{"A"}, "New", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestPublishEntryShape(t *testing.T) {
	api := &fakeEventBridge{}
	p := NewPublisher(api, "xams-events", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), renamed("B")))

	require.Len(t, api.calls, 1)
	entry := api.calls[0].Entries[0]
	assert.Equal(t, "xams-events", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeBankRenamed, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "B", detail["bank_id"])
	assert.Equal(t, "New", detail["name"])
}

func TestPublishBatchChunksByTen(t *testing.T) {
	api := &fakeEventBridge{}
	p := NewPublisher(api, "bus", zap.NewNop())

	batch := make([]events.DomainEvent, 23)
	for i := range batch {
		batch[i] = renamed("B")
	}
	require.NoError(t, p.PublishBatch(context.Background(), batch))

	require.Len(t, api.calls, 3)
	assert.Len(t, api.calls[2].Entries, 3)
}

func TestPublishFailures(t *testing.T) {
	api := &fakeEventBridge{err: errors.New("throttled")}
	p := NewPublisher(api, "bus", zap.NewNop())
	assert.True(t, pkgerrors.IsType(p.Publish(context.Background(), renamed("B")), pkgerrors.ErrorTypeUnavailable))

	api = &fakeEventBridge{output: &eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
	}}
	p = NewPublisher(api, "bus", zap.NewNop())
	err := p.Publish(context.Background(), renamed("B"))
	require.Error(t, err)
	assert.Equal(t, "InternalFailure", pkgerrors.GetAppError(err).Code)
}
