// Package errors provides structured error types for class file diagnostics.
//
// Every error carries the pipeline phase that produced it (parse, decode,
// resolve, validate) and a kind matching the failure taxonomy of the constant
// pool reader (truncation, malformed text, unknown tag, self-reference,
// out-of-bounds reference, unresolvable pool, type mismatch). Errors render
// to a single diagnostic line; all of them are fatal to the class file being
// read and none are meant to be recovered from.
//
// Errors can be matched by phase and kind with errors.Is:
//
//	if errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseResolve, Kind: cferrors.KindSelfReference}) {
//	    // entry referenced its own index
//	}
package errors
