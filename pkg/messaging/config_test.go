package messaging

import "testing"

func TestFailureTopic(t *testing.T) {
	cfg := NewDefaultConfig(nil)

	msg := &Message{Type: "user_created"}
	if got := cfg.failureTopic(msg); got != cfg.RetryTopic {
		t.Fatalf("first failure goes to %q, want retry topic", got)
	}

	msg.RetryCount = cfg.MaxRetries
	if got := cfg.failureTopic(msg); got != cfg.DLQTopic {
		t.Fatalf("exhausted retries go to %q, want dlq", got)
	}

	cfg.EnableRetry = false
	msg.RetryCount = 0
	if got := cfg.failureTopic(msg); got != cfg.DLQTopic {
		t.Fatalf("retry disabled goes to %q, want dlq", got)
	}
}

func TestAllowedTypes(t *testing.T) {
	cfg := NewDefaultConfig([]string{"kafka:9092"})
	if !cfg.allows("anything") {
		t.Fatal("empty allow list must accept every type")
	}

	cfg.AllowedMessageTypes = []string{"user_created"}
	if !cfg.allows("user_created") || cfg.allows("session_started") {
		t.Fatal("allow list not applied")
	}
}

func TestNewMessageEncodesPayload(t *testing.T) {
	msg, err := NewMessage("tree_planted", "circle-service", "room-1", map[string]int{"focus_minutes": 25})
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" || msg.Key != "room-1" || string(msg.Payload) != `{"focus_minutes":25}` {
		t.Fatalf("unexpected message %+v", msg)
	}
}
