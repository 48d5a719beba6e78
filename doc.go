// Package classfile decodes and validates the constant pool of JVM class
// files.
//
// The constant pool is the class file's shared symbol table: every other
// structure in the file refers to strings, numeric literals and symbolic
// references by 1-based pool index instead of embedding them inline. Reading
// it safely is the hard part of any class file reader, for two reasons.
// Entries reference each other by index in either direction, so a single
// left-to-right decode cannot materialize links; and once linked, every
// reference must target an entry of the kind its slot requires, with one
// rule that varies by class file version. This package handles both: it is
// where malformed, adversarial or version-skewed input is stopped before a
// disassembler or verifier ever sees the pool.
//
// # Pipeline
//
// Processing is a strict three-phase sequence over one in-memory pool:
//
//	decode    tag-dispatched entry reading; references stay raw indices
//	resolve   fixed-point iteration links every reference, detecting
//	          self-references, out-of-bounds indices and cycles
//	validate  every reference checked against the per-kind target matrix
//
// Any error aborts the pipeline; a pool that failed any phase must be
// discarded. The pipeline is single-threaded and the returned Pool is
// read-only.
//
// # Usage
//
// Parse a class file through its constant pool and class references:
//
//	data, _ := os.ReadFile("Foo.class")
//	c, err := classfile.ParseClass(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.ThisClassName())
//
// Or decode just a pool from inside an enclosing reader, continuing at the
// returned offset:
//
//	pool, next, err := classfile.DecodePool(data, offset, count, major)
//
// Entries retrieved from the pool are narrowed with typed accessors
// (Entry.Utf8, Entry.ClassName) or kind-checked lookups (Pool.Ref), which
// accept unions such as "ClassInfo or the zero sentinel" for slots like the
// superclass that may legally hold index 0.
package classfile
