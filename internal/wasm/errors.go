package wasm

import (
	"errors"
	"fmt"
	"time"
)

// ErrRuntimeClosed is returned when a closed runtime is asked to load or instantiate.
var ErrRuntimeClosed = errors.New("Wasm runtime is closed")

// LoadError occurs when module bytes cannot be read from storage
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load Wasm module '%s': %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ValidationError occurs when module bytes do not decode as a valid Wasm module
type ValidationError struct {
	ModuleName string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid Wasm module '%s': %v", e.ModuleName, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InstantiationError occurs when module instantiation fails
type InstantiationError struct {
	ModuleName string
	InstanceID string
	Err        error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate module '%s' (instance: %s): %v",
		e.ModuleName, e.InstanceID, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// ModuleNotFoundError occurs when a module is not in cache
type ModuleNotFoundError struct {
	ModuleName string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module '%s' not found in cache", e.ModuleName)
}

// FunctionNotFoundError occurs when an exported function is missing
type FunctionNotFoundError struct {
	ModuleName   string
	FunctionName string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function '%s' not found in module '%s'",
		e.FunctionName, e.ModuleName)
}

// MemoryNotExportedError occurs when the module has no memory under the expected name
type MemoryNotExportedError struct {
	ModuleName string
	MemoryName string
}

func (e *MemoryNotExportedError) Error() string {
	return fmt.Sprintf("memory '%s' not exported by module '%s'",
		e.MemoryName, e.ModuleName)
}

// MemoryAccessError occurs when memory operations fail
type MemoryAccessError struct {
	Operation string
	Address   uint32
	Length    uint32
	Err       error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("memory access failed (op=%s, addr=%d, len=%d): %v",
		e.Operation, e.Address, e.Length, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

// OutOfMemoryError occurs when linear memory cannot grow to the requested size
type OutOfMemoryError struct {
	Requested uint64
	Size      uint32
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of Wasm memory: need %d bytes, have %d", e.Requested, e.Size)
}

// TrapError occurs when a call faults inside the module
type TrapError struct {
	ModuleName   string
	FunctionName string
	Err          error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("call to '%s' in module '%s' trapped: %v",
		e.FunctionName, e.ModuleName, e.Err)
}

func (e *TrapError) Unwrap() error {
	return e.Err
}

// HostFunctionError occurs when host function execution fails
type HostFunctionError struct {
	FunctionName string
	Err          error
}

func (e *HostFunctionError) Error() string {
	return fmt.Sprintf("host function '%s' failed: %v", e.FunctionName, e.Err)
}

func (e *HostFunctionError) Unwrap() error {
	return e.Err
}

// InstanceLimitError occurs when too many instances are alive at once
type InstanceLimitError struct {
	Limit int
}

func (e *InstanceLimitError) Error() string {
	return fmt.Sprintf("instance limit reached (%d active)", e.Limit)
}

// TimeoutError occurs when Wasm execution times out
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Wasm execution timed out after %v", e.Duration)
}
