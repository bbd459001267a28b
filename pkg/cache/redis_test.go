package cache

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("nil should stay nil")
	}
	if err := classify(redis.Nil); err != redis.Nil || IsRetryable(err) {
		t.Errorf("redis.Nil should pass through, got %v", err)
	}

	err := classify(timeoutErr{})
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("network errors should be retryable ErrNetwork, got %v", err)
	}

	plain := errors.New("WRONGTYPE")
	if got := classify(plain); got != plain {
		t.Errorf("server errors should pass through, got %v", got)
	}
}
