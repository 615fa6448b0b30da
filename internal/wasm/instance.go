package wasm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// InstanceManager creates and manages module instances.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs *HostFunctionsImpl

	hostMu sync.Mutex
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs *HostFunctionsImpl, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Module name to instantiate.
	ModuleName string

	// Instance ID (if empty, generates UUID).
	InstanceID string
}

// Instance represents an instantiated Wasm module.
type Instance struct {
	module  api.Module
	runtime *Runtime
	logger  *zap.Logger

	// Instance metadata.
	ID        string
	Name      string
	CreatedAt int64

	// Exported functions, resolved once at instantiation.
	exports map[string]api.Function
}

// Instantiate creates a new instance from a compiled module.
// Host functions are exported to the Wasm module.
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	if m.runtime.IsClosed() {
		return nil, ErrRuntimeClosed
	}

	compiled, ok := m.runtime.GetCompiledModule(config.ModuleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.ModuleName}
	}

	if limit := m.runtime.Config().MaxInstances; limit > 0 && m.runtime.InstanceCount() >= limit {
		return nil, &InstanceLimitError{Limit: limit}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = "inst-" + uuid.NewString()
	}

	m.logger.Info("Instantiating Wasm module",
		zap.String("module", config.ModuleName),
		zap.String("instance_id", instanceID),
	)

	if err := m.ensureHostModule(ctx); err != nil {
		return nil, fmt.Errorf("failed to export host functions: %w", err)
	}

	// Exported start functions are not run; callers invoke the entry point.
	// A start section, if present, still runs.
	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions()

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		return nil, &InstantiationError{
			ModuleName: config.ModuleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	exports := m.cacheExportedFunctions(module)

	instance := &Instance{
		module:    module,
		runtime:   m.runtime,
		logger:    m.logger.With(zap.String("instance_id", instanceID)),
		ID:        instanceID,
		Name:      config.ModuleName,
		CreatedAt: time.Now().Unix(),
		exports:   exports,
	}

	m.runtime.StoreInstance(instanceID, instance)

	m.logger.Info("Module instantiated successfully",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(exports)),
	)

	return instance, nil
}

// ensureHostModule instantiates the host import module once per runtime.
func (m *InstanceManager) ensureHostModule(ctx context.Context) error {
	m.hostMu.Lock()
	defer m.hostMu.Unlock()

	if m.runtime.runtime.Module(HostModuleName) != nil {
		return nil
	}

	builder := m.hostFuncs.export(m.runtime.runtime.NewHostModuleBuilder(HostModuleName))
	if _, err := builder.Instantiate(ctx); err != nil {
		return err
	}

	m.logger.Debug("Host module instantiated", zap.String("name", HostModuleName))
	return nil
}

// cacheExportedFunctions resolves every exported function once.
func (m *InstanceManager) cacheExportedFunctions(module api.Module) map[string]api.Function {
	exports := make(map[string]api.Function)

	for name := range module.ExportedFunctionDefinitions() {
		if fn := module.ExportedFunction(name); fn != nil {
			exports[name] = fn
		}
	}

	return exports
}

// Close closes the instance and releases resources.
func (i *Instance) Close(ctx context.Context) error {
	i.runtime.DeleteInstance(i.ID)
	return i.module.Close(ctx)
}

// Function returns an exported function by name.
func (i *Instance) Function(name string) (api.Function, error) {
	fn, ok := i.exports[name]
	if !ok {
		return nil, &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
	}
	return fn, nil
}

// Memory returns the exported memory with the given name.
func (i *Instance) Memory(name string) (*Memory, error) {
	mem := i.module.ExportedMemory(name)
	if mem == nil {
		return nil, &MemoryNotExportedError{ModuleName: i.Name, MemoryName: name}
	}
	return NewMemory(mem), nil
}

// Call invokes an exported function. Faults raised inside the module are
// returned as *TrapError, an elapsed execution timeout as *TimeoutError.
// Cancelling ctx interrupts the guest and the error wraps ctx.Err().
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn, err := i.Function(name)
	if err != nil {
		return nil, err
	}

	config := i.runtime.Config()
	parent := ctx

	timeout := config.ExecutionTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if config.DebugEnabled {
		i.logger.Debug("Calling export",
			zap.String("function", name),
			zap.Uint64s("params", params),
		)
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			return nil, &TimeoutError{Duration: timeout}
		}
		if parent.Err() != nil {
			return nil, fmt.Errorf("call '%s' interrupted: %w", name, parent.Err())
		}
		return nil, &TrapError{ModuleName: i.Name, FunctionName: name, Err: err}
	}

	if config.DebugEnabled {
		i.logger.Debug("Export returned",
			zap.String("function", name),
			zap.Uint64s("results", results),
		)
	}

	return results, nil
}

// CallFormatted invokes an exported function and renders its results
// according to the function's declared result types.
func (i *Instance) CallFormatted(ctx context.Context, name string, params ...uint64) (string, error) {
	fn, err := i.Function(name)
	if err != nil {
		return "", err
	}

	results, err := i.Call(ctx, name, params...)
	if err != nil {
		return "", err
	}

	return FormatResults(fn.Definition().ResultTypes(), results), nil
}
