package host

import (
	"context"

	"go.uber.org/zap"
)

// InvokeJob describes one no-argument run.
type InvokeJob struct {
	ModulePath string
}

// RunInvoke calls the module's entry point without arguments and prints
// the returned value.
func (h *Host) RunInvoke(ctx context.Context, job InvokeJob) (string, error) {
	instance, err := h.instantiate(ctx, job.ModulePath)
	if err != nil {
		return "", err
	}
	defer instance.Close(ctx)

	result, err := instance.CallFormatted(ctx, h.exports.Entry)
	if err != nil {
		return "", err
	}

	if err := h.printResult(result); err != nil {
		return "", err
	}

	h.logger.Info("Invoke run complete",
		zap.String("module", job.ModulePath),
		zap.String("result", result),
	)

	return result, nil
}
