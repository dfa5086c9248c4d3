// Package resource implements the Controller for memory and IO limits.
//
// The Controller governs two resource types:
//
//   - Memory: Track and limit the bytes held by owned interval sets (non-blocking, fail-fast)
//   - IO: Rate-limit result uploads so a scan does not saturate a shared link
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic
// counter for usage. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//	if err := rc.AcquireMemory(n); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// # IO Throttling
//
// AcquireIO blocks on a token bucket sized to one second of throughput.
// NewRateLimitedWriter applies it to every Write.
//
// A nil *Controller is valid and imposes no limits.
package resource
