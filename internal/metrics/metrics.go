package metrics

import "sync"

// Usage counts relayed requests and upstream token consumption.
type Usage struct {
	mu               sync.Mutex
	requests         int64
	failures         int64
	promptTokens     int64
	completionTokens int64
}

// Snapshot is a point-in-time copy of Usage.
type Snapshot struct {
	Requests         int64 `json:"requests"`
	Failures         int64 `json:"failures"`
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
}

func (u *Usage) AddRequest() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests++
}

func (u *Usage) AddFailure() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failures++
}

func (u *Usage) AddTokens(prompt, completion int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.promptTokens += int64(prompt)
	u.completionTokens += int64(completion)
}

func (u *Usage) Snapshot() Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Snapshot{
		Requests:         u.requests,
		Failures:         u.failures,
		PromptTokens:     u.promptTokens,
		CompletionTokens: u.completionTokens,
	}
}
