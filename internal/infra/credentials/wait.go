package credentials

import (
	"context"
	"time"
)

// KeySource yields the currently configured Gemini API key.
type KeySource interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// Wait polls src until a non-empty key appears, up to attempts checks spaced
// by interval. It returns true as soon as a key is available and false when
// the attempts are exhausted. A canceled context aborts the wait.
func Wait(ctx context.Context, src KeySource, attempts int, interval time.Duration) (bool, error) {
	if attempts < 1 {
		attempts = 1
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
		key, err := src.GeminiAPIKey(ctx)
		if err != nil {
			return false, err
		}
		if key != "" {
			return true, nil
		}
	}
	return false, nil
}
