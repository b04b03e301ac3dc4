// Package testing switches the process into test mode on import so binaries
// and app wiring skip their runtime side effects.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

// TestModeEnv is the variable read by app.InTestMode.
const TestModeEnv = "SALESDESK_TEST_MODE"

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv(TestModeEnv, "1")
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be delegated to from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
