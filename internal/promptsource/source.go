// Package promptsource supplies prompt strings to concurrent callers in a
// fixed round-robin order, wrapping back to the start once exhausted.
package promptsource

import (
	"fmt"
	"sync/atomic"
)

// Source is safe for concurrent use by many goroutines.
type Source struct {
	prompts []string
	cursor  uint64
}

// New builds a Source over prompts. prompts must be non-empty.
func New(prompts []string) (*Source, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("promptsource: at least one prompt is required")
	}
	cp := make([]string, len(prompts))
	copy(cp, prompts)
	return &Source{prompts: cp}, nil
}

// Next returns the next prompt in round-robin order. Concurrent callers each
// receive a distinct, monotonically-advancing slot, wrapping modulo the
// prompt count.
func (s *Source) Next() string {
	n := atomic.AddUint64(&s.cursor, 1) - 1
	return s.prompts[n%uint64(len(s.prompts))]
}

// Count reports the number of distinct prompts available.
func (s *Source) Count() int {
	return len(s.prompts)
}

// Reset rewinds the round-robin cursor to the first prompt. Intended for
// reuse of a Source across sequential stages that should each start from the
// same prompt ordering.
func (s *Source) Reset() {
	atomic.StoreUint64(&s.cursor, 0)
}
