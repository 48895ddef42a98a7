package gateway

import "log"

// BestEffort runs a non-critical side effect. Failure is logged and
// swallowed: callers depending on this helper are declaring, in the code
// itself, that the outcome of fn must never affect the primary result.
func BestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("best-effort %s failed: %v", name, err)
	}
}
