package activitymap_test

import (
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/activitymap"
	"github.com/google/uuid"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	userID := uuid.New()
	event := accounts.ActivityEvent{
		EventType: accounts.ActivityEventAccountActivated,
		UserID:    userID,
		Email:     "jane@example.com",
		Metadata: map[string]any{
			"request_id": "req-204",
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != userID.String() {
		t.Fatalf("expected actor_id %q, got %q", userID, out.ActorID)
	}
	if out.Verb != string(accounts.ActivityEventAccountActivated) {
		t.Fatalf("expected verb %q, got %q", accounts.ActivityEventAccountActivated, out.Verb)
	}
	if out.ObjectType != "account" {
		t.Fatalf("expected object_type account, got %q", out.ObjectType)
	}
	if out.ObjectID != userID.String() {
		t.Fatalf("expected object_id %q, got %q", userID, out.ObjectID)
	}
	if out.Channel != "accounts" {
		t.Fatalf("expected channel accounts, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}

	if out.Metadata["request_id"] != "req-204" {
		t.Fatalf("expected metadata request_id req-204, got %#v", out.Metadata["request_id"])
	}
	if out.Metadata[activitymap.MetadataKeyEmail] != "jane@example.com" {
		t.Fatalf("expected metadata email, got %#v", out.Metadata[activitymap.MetadataKeyEmail])
	}

	if len(event.Metadata) != 1 {
		t.Fatalf("expected source metadata to remain unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	event := accounts.ActivityEvent{
		EventType: accounts.ActivityEventEmailChangeRequested,
		UserID:    userID,
		Metadata: map[string]any{
			"new_email": "jane.new@example.com",
		},
	}

	out := activitymap.Normalize(
		event,
		activitymap.WithDefaultChannel("audit"),
		activitymap.WithDefaultObjectType("profile"),
		activitymap.WithObjectIDResolver(func(e accounts.ActivityEvent) string {
			return "profile:" + e.UserID.String()
		}),
	)

	if out.Channel != "audit" {
		t.Fatalf("expected channel audit, got %q", out.Channel)
	}
	if out.ObjectType != "profile" {
		t.Fatalf("expected object_type profile, got %q", out.ObjectType)
	}
	if out.ObjectID != "profile:"+userID.String() {
		t.Fatalf("expected resolved object_id, got %q", out.ObjectID)
	}
	if out.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to default to now")
	}
}

func TestNormalizeActorFallback(t *testing.T) {
	t.Parallel()

	event := accounts.ActivityEvent{
		EventType: accounts.ActivityEventSignupCreated,
	}

	out := activitymap.Normalize(event)
	if out.ActorID != "system" {
		t.Fatalf("expected fallback actor system, got %q", out.ActorID)
	}

	out = activitymap.Normalize(event, activitymap.WithActorFallback("cron"))
	if out.ActorID != "cron" {
		t.Fatalf("expected fallback actor cron, got %q", out.ActorID)
	}
}
