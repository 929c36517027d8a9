package rfprag_test

import (
	"errors"
	"testing"

	rfprag "github.com/MegaGrindStone/go-rfp-rag"
)

func TestConversationAsk(t *testing.T) {
	doc := rfprag.Document{Name: "rfp.docx", Paragraphs: []string{"사업 개요"}}
	context := rfprag.ExternalContext{Query: "금융 IT", Content: "background"}
	conv := rfprag.NewConversation(doc, context)

	completer := &MockCompleter{
		response: rfprag.CompletionResponse{Content: "  the answer  "},
	}

	resp, _, err := conv.Ask("what is the scope?", completer, fastRetryPolicy(0), testLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "  the answer  " {
		t.Errorf("unexpected response content %q", resp.Content)
	}

	turns := conv.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Question != "what is the scope?" {
		t.Errorf("unexpected question %q", turns[0].Question)
	}
	if turns[0].Answer != "the answer" {
		t.Errorf("expected trimmed answer, got %q", turns[0].Answer)
	}
	if turns[0].AskedAt.IsZero() {
		t.Error("expected turn timestamp to be set")
	}
}

func TestConversationAskEmptyQuestion(t *testing.T) {
	conv := rfprag.NewConversation(rfprag.Document{Name: "rfp.docx"}, rfprag.ExternalContext{})
	completer := &MockCompleter{response: rfprag.CompletionResponse{Content: "unused"}}

	for _, question := range []string{"", "   ", "\t\n"} {
		_, _, err := conv.Ask(question, completer, fastRetryPolicy(0), testLogger(t))
		if !errors.Is(err, rfprag.ErrEmptyQuestion) {
			t.Errorf("question %q: expected ErrEmptyQuestion, got %v", question, err)
		}
	}

	if len(completer.calls) != 0 {
		t.Errorf("empty questions must not reach the completer, got %d calls", len(completer.calls))
	}
	if len(conv.Turns()) != 0 {
		t.Errorf("empty questions must not add turns, got %d", len(conv.Turns()))
	}
}

func TestConversationAskCompleterFailure(t *testing.T) {
	conv := rfprag.NewConversation(rfprag.Document{Name: "rfp.docx"}, rfprag.ExternalContext{})
	completer := &MockCompleter{err: errors.New("deployment offline")}

	_, _, err := conv.Ask("question", completer, fastRetryPolicy(0), testLogger(t))
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(conv.Turns()) != 0 {
		t.Errorf("failed completions must not add turns, got %d", len(conv.Turns()))
	}
}

func TestConversationTurnOrder(t *testing.T) {
	conv := rfprag.NewConversation(rfprag.Document{Name: "rfp.docx"}, rfprag.ExternalContext{})

	questions := []string{"first", "second", "third"}
	for _, question := range questions {
		if err := conv.AddTurn(question, "answer to "+question); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	turns := conv.Turns()
	for i, question := range questions {
		if turns[i].Question != question {
			t.Errorf("expected turn %d to be %q, got %q", i, question, turns[i].Question)
		}
	}

	display := conv.TurnsForDisplay()
	for i, question := range questions {
		j := len(questions) - 1 - i
		if display[j].Question != question {
			t.Errorf("expected display position %d to be %q, got %q", j, question, display[j].Question)
		}
	}
}

func TestConversationReset(t *testing.T) {
	first := rfprag.Document{Name: "first.docx", Paragraphs: []string{"one"}}
	conv := rfprag.NewConversation(first, rfprag.ExternalContext{Content: "ctx"})
	oldID := conv.ID()

	if err := conv.AddTurn("question", "answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := rfprag.Document{Name: "second.docx", Paragraphs: []string{"two"}}
	conv.Reset(second, rfprag.ExternalContext{})

	if conv.ID() == oldID {
		t.Error("expected reset to issue a new session identifier")
	}
	if conv.Document().Name != "second.docx" {
		t.Errorf("expected new document bound, got %q", conv.Document().Name)
	}
	if len(conv.Turns()) != 0 {
		t.Errorf("expected turns discarded on reset, got %d", len(conv.Turns()))
	}
}
