// Package tokenusage extracts prompt/completion/total token counts from a
// JSON response body, supporting the two wire schemas in common use among
// hosted LLM APIs.
package tokenusage

import "github.com/tidwall/gjson"

// Usage holds the token accounting for one successful response. A missing
// field decodes as zero; Usage is the zero value when the body carries no
// recognizable usage block at all.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Parse inspects body for an OpenAI-shaped "usage" object
// (prompt_tokens/completion_tokens/total_tokens) first, falling back to the
// Claude-shaped "usage" object (input_tokens/output_tokens, no total). When
// neither schema matches, Parse returns the zero Usage and ok=false; callers
// treat this as "no token data", never as an error — token accounting is
// best-effort.
func Parse(body []byte) (Usage, bool) {
	usage := gjson.GetBytes(body, "usage")
	if !usage.Exists() {
		return Usage{}, false
	}

	if prompt := usage.Get("prompt_tokens"); prompt.Exists() {
		u := Usage{
			PromptTokens:     int(prompt.Int()),
			CompletionTokens: int(usage.Get("completion_tokens").Int()),
			TotalTokens:      int(usage.Get("total_tokens").Int()),
		}
		return u, true
	}

	if input := usage.Get("input_tokens"); input.Exists() {
		output := usage.Get("output_tokens")
		u := Usage{
			PromptTokens:     int(input.Int()),
			CompletionTokens: int(output.Int()),
		}
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
		return u, true
	}

	return Usage{}, false
}
