package messaging

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
	"go.uber.org/zap/zaptest/observer"

	"recipebook/domain/core/valueobjects"
	"recipebook/domain/events"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func createdEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewRecipeCreated(valueobjects.NewRecipeID(), "Soup",
			valueobjects.DietVegan, valueobjects.PrepTimeUnder15, []string{"soup"}, time.Now().UTC())
	}
	return out
}

func TestEventBridgePublisher_Batches(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewEventBridgePublisher(client, "recipes", zap.NewNop())

	require.NoError(t, p.PublishBatch(context.Background(), createdEvents(23)))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].Entries, 10)
	assert.Len(t, client.calls[1].Entries, 10)
	assert.Len(t, client.calls[2].Entries, 3)

	entry := client.calls[0].Entries[0]
	assert.Equal(t, "recipes", aws.ToString(entry.EventBusName))
	assert.Equal(t, events.SourceCatalog, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeRecipeCreated, aws.ToString(entry.DetailType))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "Soup", detail["name"])
}

func TestEventBridgePublisher_Empty(t *testing.T) {
	client := &fakeEventBridge{}
	p := NewEventBridgePublisher(client, "recipes", zap.NewNop())

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Empty(t, client.calls)
}

func TestEventBridgePublisher_Failures(t *testing.T) {
	client := &fakeEventBridge{err: errors.New("throttled")}
	p := NewEventBridgePublisher(client, "recipes", zap.NewNop())
	assert.ErrorContains(t, p.Publish(context.Background(), createdEvents(1)[0]), "throttled")

	client = &fakeEventBridge{output: &eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
		},
	}}
	p = NewEventBridgePublisher(client, "recipes", zap.NewNop())
	assert.ErrorContains(t, p.Publish(context.Background(), createdEvents(1)[0]), "1 events failed")
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.PublishBatch(context.Background(), createdEvents(2)))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypeRecipeCreated, entries[0].ContextMap()["eventType"])
}
