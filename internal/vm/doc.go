// Package vm implements a simulator for a simplified LC-3 computer.
//
// This build targets a single-program, single-privilege machine: there are no
// privilege levels, no priority levels, and no interrupts. Memory is a flat,
// 65,536-word array with no reserved I/O page. TRAP dispatches directly to an
// injectable [IO] capability instead of loading and jumping to a service
// routine out of a boot ROM.
//
// An [LC3] is assembled from a [Memory], a [RegisterFile], the special
// purpose registers (PC, IR, PSR, MCR), and an [IO] implementation, then
// driven one instruction at a time by [LC3.Step] or to completion by
// [LC3.Run]. A [Loader] copies assembled object code into memory ahead of
// execution.
package vm
