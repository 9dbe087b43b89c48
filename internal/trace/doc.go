// Package trace records what chplfmt is doing while it walks and rewrites
// files.
//
// Tracing is off by default. The CLI turns it on with --trace (output path,
// "-" for stderr) and --trace-level:
//
//	chplfmt fmt --trace=- --trace-level=detail src/
//
// Tracers:
//
//   - Nop: no-op when disabled
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events and writes them when closed
//     (--trace-mode=ring)
//
// Levels go from LevelOff to LevelDebug. LevelError keeps only failures,
// LevelPhase adds driver and pass spans, LevelDetail adds per-file spans,
// LevelDebug adds instant points.
//
// The tracer travels through the driver in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, "format")
//	defer span.End("")
package trace
