package notify

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubSinkPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "records"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	sink, err := newPubSubSink(ctx, SinkConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubSinkConfig{ProjectID: "test-project", Topic: "records"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubSink: %v", err)
	}
	defer sink.(*pubsubSink).Close()

	if err := sink.Publish(ctx, ChangeEvent{Op: OpCreate, Key: "k1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["key"] != "k1" {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
	var evt ChangeEvent
	if err := json.Unmarshal(msgs[0].Data, &evt); err != nil || evt.Op != OpCreate {
		t.Fatalf("unexpected payload %s (err=%v)", msgs[0].Data, err)
	}
}
