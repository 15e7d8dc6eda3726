package vm

// log.go wires the machine's components to a structured logger.

import (
	"github.com/coriolis-labs/lc3/internal/log"
)

// WithLogger configures the machine's logger.
func WithLogger(logger *log.Logger) OptionFn {
	return func(vm *LC3) {
		vm.updateLogger(logger)
	}
}

func (vm *LC3) updateLogger(logger *log.Logger) {
	vm.log = logger
	vm.Mem.log = logger
}

// LogValue returns a structured representation of the machine's state for logging.
func (vm *LC3) LogValue() log.Value {
	return log.GroupValue(
		log.String("PC", vm.PC.String()),
		log.String("IR", vm.IR.String()),
		log.String("PSR", vm.PSR.String()),
		log.String("MCR", vm.MCR.String()),
		log.Any("REG", vm.REG),
	)
}
