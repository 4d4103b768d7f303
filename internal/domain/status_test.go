package domain

import (
	"encoding/json"
	"testing"
)

func TestStatusJSONRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusWaiting, StatusInProgress, StatusFinished} {
		raw, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal %v: %v", s, err)
		}
		var back Status
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if back != s {
			t.Fatalf("round trip changed %v to %v", s, back)
		}
	}

	var s Status
	if err := json.Unmarshal([]byte(`"paused"`), &s); err == nil {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("auto"); err != nil || m != ModeAuto {
		t.Fatalf("expected auto, got %v/%v", m, err)
	}
	if m, err := ParseMode("manual"); err != nil || m != ModeManual {
		t.Fatalf("expected manual, got %v/%v", m, err)
	}
	if _, err := ParseMode("turbo"); err == nil {
		t.Fatalf("expected unknown mode rejected")
	}
}
