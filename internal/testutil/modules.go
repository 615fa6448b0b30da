// Package testutil holds hand-encoded WebAssembly binaries used by tests.
//
// Each fixture lists the text format it was encoded from.
package testutil

var header = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic: \0asm
	0x01, 0x00, 0x00, 0x00, // version: 1
}

func module(sections ...[]byte) []byte {
	out := append([]byte{}, header...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// ExchangeStartFreePointer is the initial free pointer of ExchangeModule.
const ExchangeStartFreePointer = 16

// ExchangeModule follows the buffer-passing convention:
//
//	(module
//	  (memory (export "memory") 1)
//	  (global $free (mut i32) (i32.const 16))
//	  (func (export "get-free-ptr") (result i32) global.get $free)
//	  (func (export "incr-free-ptr") (param i32)
//	    (global.set $free (i32.add (global.get $free) (local.get 0))))
//	  (func (export "main") (param i32) (result i32)
//	    ;; copy the input length to the free pointer and claim 4 bytes
//	    (i32.store (global.get $free) (i32.load (local.get 0)))
//	    (global.set $free (i32.add (global.get $free) (i32.const 4)))
//	    (i32.load (local.get 0))))
var ExchangeModule = module(
	// type section: () -> i32, (i32) -> (), (i32) -> i32
	[]byte{0x01, 0x0e, 0x03,
		0x60, 0x00, 0x01, 0x7f,
		0x60, 0x01, 0x7f, 0x00,
		0x60, 0x01, 0x7f, 0x01, 0x7f},
	// function section
	[]byte{0x03, 0x04, 0x03, 0x00, 0x01, 0x02},
	// memory section: min 1 page
	[]byte{0x05, 0x03, 0x01, 0x00, 0x01},
	// global section: mut i32 = 16
	[]byte{0x06, 0x06, 0x01, 0x7f, 0x01, 0x41, 0x10, 0x0b},
	// export section
	[]byte{0x07, 0x30, 0x04,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x0c, 'g', 'e', 't', '-', 'f', 'r', 'e', 'e', '-', 'p', 't', 'r', 0x00, 0x00,
		0x0d, 'i', 'n', 'c', 'r', '-', 'f', 'r', 'e', 'e', '-', 'p', 't', 'r', 0x00, 0x01,
		0x04, 'm', 'a', 'i', 'n', 0x00, 0x02},
	// code section
	[]byte{0x0a, 0x29, 0x03,
		// get-free-ptr
		0x04, 0x00, 0x23, 0x00, 0x0b,
		// incr-free-ptr
		0x09, 0x00, 0x23, 0x00, 0x20, 0x00, 0x6a, 0x24, 0x00, 0x0b,
		// main
		0x18, 0x00,
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x28, 0x02, 0x00, // i32.load
		0x36, 0x02, 0x00, // i32.store
		0x23, 0x00, // global.get 0
		0x41, 0x04, // i32.const 4
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
		0x20, 0x00, // local.get 0
		0x28, 0x02, 0x00, // i32.load
		0x0b},
)

// ConstantModule returns 42 from a zero-argument entry point:
//
//	(module (func (export "main") (result i32) i32.const 42))
var ConstantModule = module(
	[]byte{0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00},
	[]byte{0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b},
)

// TrapModule faults as soon as its entry point runs:
//
//	(module (func (export "main") (result i32) unreachable))
var TrapModule = module(
	[]byte{0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00},
	[]byte{0x0a, 0x05, 0x01, 0x03, 0x00, 0x00, 0x0b},
)

// LoopModule never returns on its own:
//
//	(module (func (export "main") (result i32) (loop br 0) unreachable))
var LoopModule = module(
	[]byte{0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x08, 0x01, 0x04, 'm', 'a', 'i', 'n', 0x00, 0x00},
	[]byte{0x0a, 0x0a, 0x01, 0x08, 0x00,
		0x03, 0x40, // loop
		0x0c, 0x00, // br 0
		0x0b,       // end
		0x00,       // unreachable
		0x0b},
)

// LoggingModule logs "hi" at info level through the host import, then returns 7:
//
//	(module
//	  (import "host" "log_message" (func $log (param i32 i32 i32)))
//	  (memory (export "memory") 1)
//	  (func (export "main") (result i32)
//	    (call $log (i32.const 1) (i32.const 0) (i32.const 2))
//	    i32.const 7)
//	  (data (i32.const 0) "hi"))
var LoggingModule = module(
	[]byte{0x01, 0x0b, 0x02,
		0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x00,
		0x60, 0x00, 0x01, 0x7f},
	// import section
	[]byte{0x02, 0x14, 0x01,
		0x04, 'h', 'o', 's', 't',
		0x0b, 'l', 'o', 'g', '_', 'm', 'e', 's', 's', 'a', 'g', 'e',
		0x00, 0x00},
	[]byte{0x03, 0x02, 0x01, 0x01},
	[]byte{0x05, 0x03, 0x01, 0x00, 0x01},
	[]byte{0x07, 0x11, 0x02,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x04, 'm', 'a', 'i', 'n', 0x00, 0x01},
	[]byte{0x0a, 0x0e, 0x01, 0x0c, 0x00,
		0x41, 0x01, 0x41, 0x00, 0x41, 0x02, 0x10, 0x00,
		0x41, 0x07, 0x0b},
	// data section
	[]byte{0x0b, 0x08, 0x01, 0x00, 0x41, 0x00, 0x0b, 0x02, 'h', 'i'},
)

// MemoryModule exports one page of memory and nothing else:
//
//	(module (memory (export "memory") 1))
var MemoryModule = module(
	[]byte{0x05, 0x03, 0x01, 0x00, 0x01},
	[]byte{0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00},
)

// BoundedMemoryModule exports a memory that can never grow past one page:
//
//	(module (memory (export "memory") 1 1))
var BoundedMemoryModule = module(
	[]byte{0x05, 0x04, 0x01, 0x01, 0x01, 0x01},
	[]byte{0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00},
)

// EmptyModule is a valid module with no sections.
var EmptyModule = module()
