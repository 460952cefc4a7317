// Package resource governs the device-wide budgets shared by the slow context.
//
//	┌──────────────────────────────────────────────────────────┐
//	│                       Controller                         │
//	├──────────────────┬──────────────────┬────────────────────┤
//	│  Arena budget    │  Slow workers    │  Flash write rate  │
//	│  (fail-fast)     │  (semaphore)     │  (token bucket)    │
//	├──────────────────┼──────────────────┼────────────────────┤
//	│  ReserveArena    │  AcquireWorker   │  WaitFlash         │
//	│  ReleaseArena    │  TryAcquire      │  AllowFlash        │
//	│  ArenaUsage      │  ReleaseWorker   │                    │
//	└──────────────────┴──────────────────┴────────────────────┘
//
// # Arena Budget
//
// Every arena pool reserves its full size once, at construction. The reservation
// is non-blocking and fails with ErrBudgetExceeded when the configured total
// would be exceeded, so an over-sized configuration is rejected at boot rather
// than discovered as an out-of-memory during a preset switch.
//
// # Slow Workers
//
// Limits how many slow-context jobs (persistence, display refresh) run at once.
//
// # Flash Write Rate
//
// Token bucket over bytes written to non-volatile storage. Protects flash
// endurance when presets are switched rapidly.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
