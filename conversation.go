package rfprag

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one question/answer pair in a conversation. Turns are immutable
// once created.
type ChatTurn struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

// Conversation accumulates chat turns over one document and its external
// context. Loading a new document resets the conversation; prior turns are
// discarded, not archived.
type Conversation struct {
	id       string
	document Document
	context  ExternalContext
	turns    []ChatTurn
}

// NewConversation starts a conversation bound to the given document and
// external context.
func NewConversation(doc Document, context ExternalContext) *Conversation {
	return &Conversation{
		id:       uuid.NewString(),
		document: doc,
		context:  context,
	}
}

// ID returns the session identifier of this conversation.
func (c *Conversation) ID() string { return c.id }

// Document returns the document this conversation is bound to.
func (c *Conversation) Document() Document { return c.document }

// Context returns the external context this conversation is bound to.
func (c *Conversation) Context() ExternalContext { return c.context }

// Reset binds the conversation to a new document and context, discarding all
// accumulated turns, and issues a fresh session identifier.
func (c *Conversation) Reset(doc Document, context ExternalContext) {
	c.id = uuid.NewString()
	c.document = doc
	c.context = context
	c.turns = nil
}

// AddTurn appends a question/answer pair. An empty or whitespace-only
// question is rejected with ErrEmptyQuestion and leaves the conversation
// unchanged.
func (c *Conversation) AddTurn(question, answer string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	c.turns = append(c.turns, ChatTurn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	return nil
}

// Turns returns all turns in chronological order for replay.
func (c *Conversation) Turns() []ChatTurn {
	turns := make([]ChatTurn, len(c.turns))
	copy(turns, c.turns)
	return turns
}

// TurnsForDisplay returns all turns most-recent-first.
func (c *Conversation) TurnsForDisplay() []ChatTurn {
	turns := make([]ChatTurn, len(c.turns))
	for i, turn := range c.turns {
		turns[len(c.turns)-1-i] = turn
	}
	return turns
}

// Ask composes the chat prompt for the question over the bound document and
// context, invokes the completer under the retry policy, and records the
// resulting turn. The question is validated before any external call.
func (c *Conversation) Ask(question string, completer Completer, policy RetryPolicy, logger *slog.Logger) (CompletionResponse, []Warning, error) {
	if strings.TrimSpace(question) == "" {
		return CompletionResponse{}, nil, ErrEmptyQuestion
	}

	prompt, stats, err := ComposeChatPrompt(c.document, c.context, question)
	if err != nil {
		return CompletionResponse{}, nil, err
	}

	logger.Debug("Composed chat prompt", "session", c.id, "chars", stats.Chars, "tokens", stats.Tokens)

	resp, warnings, err := Invoke(completer, policy, ChatPersona, prompt, logger)
	if err != nil {
		return CompletionResponse{}, nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if err := c.AddTurn(question, strings.TrimSpace(resp.Content)); err != nil {
		return CompletionResponse{}, nil, err
	}

	return resp, warnings, nil
}
