package memory

import (
	"context"
	"testing"
)

func TestPublishRecordsPayloads(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "scan-complete", map[string]string{"run": "a"})
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), "scan-complete", "done")
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	msgs := pub.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Topic != "scan-complete" {
		t.Fatalf("topic not recorded: %+v", msgs[0])
	}

	msgs[1].Topic = "changed"
	if pub.Messages()[1].Topic == "changed" {
		t.Fatal("expected Messages() to return a copy")
	}
}
