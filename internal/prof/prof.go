// Package prof wraps the runtime profilers behind path-based start/stop
// helpers so the CLI can wire them to flags without tracking file handles.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

var (
	cpuOut   *os.File
	traceOut *os.File
)

// StartCPU begins CPU profiling into the file at path.
func StartCPU(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("cpu profile: %w", err)
	}
	cpuOut = f
	return nil
}

// StopCPU flushes and closes an active CPU profile. No-op when none is
// running.
func StopCPU() {
	pprof.StopCPUProfile()
	if cpuOut != nil {
		_ = cpuOut.Close()
		cpuOut = nil
	}
}

// WriteMem runs a GC and dumps the heap profile to path.
func WriteMem(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mem profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("mem profile: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("mem profile: %w", err)
	}
	return nil
}

// StartTrace begins a runtime execution trace into the file at path.
func StartTrace(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runtime trace: %w", err)
	}
	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("runtime trace: %w", err)
	}
	traceOut = f
	return nil
}

// StopTrace ends an active runtime trace. No-op when none is running.
func StopTrace() {
	trace.Stop()
	if traceOut != nil {
		_ = traceOut.Close()
		traceOut = nil
	}
}
