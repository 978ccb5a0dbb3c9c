// Package errors provides structured error types for the wasm-dom bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the offending address or value, the
// memory type involved and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
//		Type("u64").
//		Value(addr).
//		Detail("access [%d, %d) exceeds %d bytes", addr, addr+8, size).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseStore, "u32", addr, 4, size)
//	err := errors.NoActiveEvent()
//
// Match a whole category regardless of phase with the Err* sentinels:
//
//	if errors.Is(err, errors.ErrOutOfBounds) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
