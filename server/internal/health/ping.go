package health

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HealthPinger can be implemented by components to expose a specialized
// health check. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// StartupError reports dependencies that never became healthy.
type StartupError struct {
	Timeout time.Duration
	Down    []string
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup aborted: dependencies not healthy within %s: %s", e.Timeout, strings.Join(e.Down, ", "))
}
