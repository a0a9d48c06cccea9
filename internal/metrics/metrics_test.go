package metrics

import (
	"sync"
	"testing"
)

func TestUsageConcurrent(t *testing.T) {
	var u Usage
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.AddRequest()
			u.AddTokens(3, 2)
		}()
	}
	wg.Wait()
	u.AddFailure()

	s := u.Snapshot()
	if s.Requests != 50 || s.Failures != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.PromptTokens != 150 || s.CompletionTokens != 100 {
		t.Fatalf("unexpected tokens %+v", s)
	}
}
