package shardqueue

import (
	"testing"

	"go.uber.org/goleak"
)

// Every executor a test starts must be stopped before the package finishes.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
