// Package guard switches the process into test mode when imported, so command
// tests never dial Redis, Gotenberg or the warmup scheduler.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SALESDASH_TEST_MODE") == "" {
			_ = os.Setenv("SALESDASH_TEST_MODE", "1")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}
