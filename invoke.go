package rfprag

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// SoftTokenBudget is the total-token threshold above which a soft
	// warning recommends chunked or sliced prompts.
	SoftTokenBudget = 80000
	// HardTokenBudget is the total-token threshold above which a hard
	// warning asks the user to reduce the document length. The budget is
	// informational; the response is still returned.
	HardTokenBudget = 100000
)

// RetryPolicy bounds retries of rate-limited completion calls. Only
// ErrRateLimited failures are retried; any other error surfaces immediately.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt, so at
	// most MaxRetries+1 calls are made.
	MaxRetries int
	// Backoff is the fixed wait between attempts.
	Backoff time.Duration

	// OnRetry, when set, is called with the upcoming attempt number (1-based)
	// before each retry. Progress reporting lives here, outside the policy.
	OnRetry func(attempt int)
}

// DefaultRetryPolicy retries once after a 20 second backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 1,
		Backoff:    20 * time.Second,
	}
}

// Invoke calls the completer with the given system and user messages under
// the retry policy, then checks the reported token usage against the
// soft and hard budgets. Budget warnings accompany a successful response and
// never fail the invocation.
func Invoke(completer Completer, policy RetryPolicy, system, user string, logger *slog.Logger) (CompletionResponse, []Warning, error) {
	logger = logger.With(
		slog.String("package", "rfprag"),
		slog.String("function", "Invoke"),
	)

	var resp CompletionResponse
	var err error

	for attempt := 0; ; attempt++ {
		resp, err = completer.Complete(system, user)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrRateLimited) {
			return CompletionResponse{}, nil, fmt.Errorf("completion failed: %w", err)
		}
		if attempt >= policy.MaxRetries {
			return CompletionResponse{}, nil, fmt.Errorf("completion still rate limited after %d retries: %w", policy.MaxRetries, err)
		}

		logger.Warn("Completion rate limited, backing off", "attempt", attempt+1, "backoff", policy.Backoff)
		time.Sleep(policy.Backoff)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt + 1)
		}
	}

	logger.Info("Completion succeeded",
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens,
		"totalTokens", resp.Usage.TotalTokens,
	)

	return resp, BudgetWarnings(resp.Usage), nil
}

// BudgetWarnings evaluates token usage against the soft and hard budgets and
// returns at most one warning, the most severe that applies.
func BudgetWarnings(usage Usage) []Warning {
	switch {
	case usage.TotalTokens > HardTokenBudget:
		return []Warning{{
			Severity: SeverityHard,
			Message: fmt.Sprintf("total token usage %d exceeds the hard budget of %d; the document length must be reduced",
				usage.TotalTokens, HardTokenBudget),
		}}
	case usage.TotalTokens > SoftTokenBudget:
		return []Warning{{
			Severity: SeveritySoft,
			Message: fmt.Sprintf("total token usage %d exceeds the soft budget of %d; consider slicing the document or summarizing chunk by chunk",
				usage.TotalTokens, SoftTokenBudget),
		}}
	default:
		return nil
	}
}
