package collab

import (
	"errors"
	"testing"

	contractx "github.com/rudra2807/AgentCoach-AI/roleplay/contract"
)

func TestDecodeStructuredStrict(t *testing.T) {
	t.Parallel()

	out, err := decodeStructured[contractx.RouterVerdict](`{"agent_label":"good_discovery","progress_signal":"advance","stage_progress_delta":25}`)
	if err != nil {
		t.Fatalf("decodeStructured() error = %v", err)
	}
	if out.AgentLabel != contractx.LabelGoodDiscovery || out.Delta != 25 {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

func TestDecodeStructuredFencedAndProseWrapped(t *testing.T) {
	t.Parallel()

	fenced := "```json\n{\"text\":\"Okay, that helps.\",\"intent\":\"ack\"}\n```"
	out, err := decodeStructured[contractx.GeneratedUtterance](fenced)
	if err != nil {
		t.Fatalf("fenced decode error = %v", err)
	}
	if out.Text != "Okay, that helps." {
		t.Fatalf("unexpected text %q", out.Text)
	}

	prose := `Here is the verdict you asked for: {"agent_label":"neutral","progress_signal":"stay"} hope that helps!`
	v, err := decodeStructured[contractx.RouterVerdict](prose)
	if err != nil {
		t.Fatalf("prose decode error = %v", err)
	}
	if v.AgentLabel != contractx.LabelNeutral {
		t.Fatalf("unexpected label %q", v.AgentLabel)
	}
}

func TestDecodeStructuredFailures(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "no json here", "{not valid json}"} {
		if _, err := decodeStructured[contractx.RouterVerdict](raw); !errors.Is(err, contractx.ErrSchemaViolation) {
			t.Fatalf("input %q: expected ErrSchemaViolation, got %v", raw, err)
		}
	}
}

func TestScrubAddress(t *testing.T) {
	t.Parallel()

	got, hit := ScrubAddress("I drove past 1427 Maple Grove Avenue yesterday.")
	if !hit {
		t.Fatalf("expected address hit")
	}
	if got != "I drove past a specific address yesterday." {
		t.Fatalf("unexpected scrub result %q", got)
	}

	got, hit = ScrubAddress("My budget is around 450000 dollars.")
	if hit {
		t.Fatalf("plain numbers must not match, got %q", got)
	}

	if _, hit := ScrubAddress("Is 880 Oak St still on the market?"); !hit {
		t.Fatalf("short street suffix must match")
	}
}
