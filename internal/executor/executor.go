// Package executor issues one templated HTTP attempt per call, with bounded
// retry and response-token parsing, and reports the outcome as a
// model.Attempt — never as a Go error, so a failed attempt is still a
// countable result rather than a propagated failure.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/torosent/llmbench/internal/endpoint"
	"github.com/torosent/llmbench/internal/model"
	"github.com/torosent/llmbench/internal/promptsource"
	"github.com/torosent/llmbench/internal/tokenusage"
)

const (
	maxAttempts = 3
	baseBackoff = time.Second
	minBackoff  = time.Second
	maxBackoff  = 10 * time.Second
)

// Executor issues requests against one rendered Endpoint Profile.
type Executor struct {
	client  *http.Client
	profile *endpoint.Profile
	prompts *promptsource.Source
	kind    string
	params  map[string]string
	timeout time.Duration
}

// New builds an Executor. timeout bounds each individual HTTP attempt.
func New(client *http.Client, profile *endpoint.Profile, prompts *promptsource.Source, kind string, params map[string]string, timeout time.Duration) *Executor {
	return &Executor{
		client:  client,
		profile: profile,
		prompts: prompts,
		kind:    kind,
		params:  params,
		timeout: timeout,
	}
}

// Execute draws the next prompt and runs one attempt through to completion,
// including retries. It never returns a Go error: every terminal state
// (success, non-2xx, transport failure, rendering failure) becomes a
// model.Attempt.
func (e *Executor) Execute(ctx context.Context) model.Attempt {
	issueTime := time.Now()
	prompt := e.prompts.Next()

	rendered, err := e.profile.Render(prompt, e.kind, e.params)
	if err != nil {
		return model.Attempt{
			IssueTime: issueTime,
			Prompt:    prompt,
			Latency:   time.Since(issueTime).Seconds(),
			Error:     err.Error(),
		}
	}

	bodyBytes, err := json.Marshal(rendered.Body)
	if err != nil {
		return model.Attempt{
			IssueTime: issueTime,
			Prompt:    prompt,
			Latency:   time.Since(issueTime).Seconds(),
			Error:     err.Error(),
		}
	}

	start := time.Now()
	status, respBody, attemptErr := e.sendWithRetry(ctx, rendered, bodyBytes)

	if attemptErr != nil {
		return model.Attempt{
			IssueTime: issueTime,
			Prompt:    prompt,
			Latency:   time.Since(issueTime).Seconds(),
			Error:     attemptErr.Error(),
		}
	}

	success := status >= 200 && status < 300
	outcome := model.Attempt{
		IssueTime:  issueTime,
		Prompt:     prompt,
		Latency:    time.Since(start).Seconds(),
		StatusCode: status,
		Success:    success,
		BodyLen:    len(respBody),
	}
	if success {
		if usage, ok := tokenusage.Parse(respBody); ok {
			outcome.InputTokens = usage.PromptTokens
			outcome.OutputTokens = usage.CompletionTokens
			outcome.TotalTokens = usage.TotalTokens
		}
	} else {
		outcome.Error = (&HTTPStatusError{StatusCode: status, Body: truncate(respBody, 512)}).Error()
	}
	return outcome
}

// sendWithRetry performs up to maxAttempts HTTP attempts. Non-2xx responses
// are terminal and never retried; only transport-level failures retry, with
// exponential backoff clamped to [minBackoff, maxBackoff].
func (e *Executor) sendWithRetry(ctx context.Context, rendered endpoint.Rendered, body []byte) (int, []byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, respBody, err := e.sendOnce(ctx, rendered, body)
		if err == nil {
			return status, respBody, nil
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		delay := backoffDelay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, nil, ctx.Err()
		case <-timer.C:
		}
	}
	return 0, nil, lastErr
}

// backoffDelay returns the exponential backoff before retry number attempt+1,
// base multiplier 1s, clamped to [1s, 10s].
func backoffDelay(attempt int) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * baseBackoff
	if delay < minBackoff {
		delay = minBackoff
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

func (e *Executor) sendOnce(ctx context.Context, rendered endpoint.Rendered, body []byte) (int, []byte, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if e.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, rendered.URL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	for _, h := range rendered.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...(truncated)", string(b[:n]))
}
