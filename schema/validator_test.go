package payloadschema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateArticlePayload(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"payload_version": "v1",
		"title": "Volcano Eruption Forces Evacuation",
		"summary": "Thousands flee the island volcano.",
		"url": "https://example.com/volcano",
		"source": "example-wire",
		"source_credibility": "high",
		"language": "en",
		"published_at": "2026-08-28T09:00:00Z"
	}`)

	item, err := ValidateArticlePayload(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Title != "Volcano Eruption Forces Evacuation" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.SourceCredibility == nil || *item.SourceCredibility != "high" {
		t.Fatalf("unexpected credibility %v", item.SourceCredibility)
	}
}

func TestValidateArticlePayloadRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantSub string
	}{
		{
			name:    "empty payload",
			payload: "   ",
			wantSub: "payload is empty",
		},
		{
			name:    "missing title",
			payload: `{"payload_version": "v1", "source": "wire"}`,
			wantSub: "schema validation failed",
		},
		{
			name:    "wrong version",
			payload: `{"payload_version": "v2", "title": "t", "source": "wire"}`,
			wantSub: "schema validation failed",
		},
		{
			name:    "unknown credibility",
			payload: `{"payload_version": "v1", "title": "t", "source": "wire", "source_credibility": "excellent"}`,
			wantSub: "schema validation failed",
		},
		{
			name:    "bad published_at",
			payload: `{"payload_version": "v1", "title": "t", "source": "wire", "published_at": "yesterday"}`,
			wantSub: "schema validation failed",
		},
		{
			name:    "trailing content",
			payload: `{"payload_version": "v1", "title": "t", "source": "wire"} {}`,
			wantSub: "trailing content",
		},
		{
			name:    "unknown field",
			payload: `{"payload_version": "v1", "title": "t", "source": "wire", "extra": true}`,
			wantSub: "schema validation failed",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateArticlePayload(json.RawMessage(tt.payload))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}
