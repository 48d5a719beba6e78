package classfile

import (
	"go.uber.org/zap"

	cferrors "github.com/jvmtools/classfile/errors"
)

// resolve links every reference in the pool to its target entry by
// fixed-point iteration. Entries may reference forward or backward, so no
// single left-to-right pass can finish the job; instead full scans repeat
// until every entry is resolved. A reference links only once its target is
// itself fully resolved, which for a well-formed (acyclic) pool converges in
// at most graph-depth passes. A pass that resolves nothing new while
// unresolved references remain means a cycle or a permanently dangling
// chain, and aborts; without that stall check adversarial input could loop
// forever.
//
// On error the pool is left partially resolved and must be discarded.
func resolve(pool Pool) error {
	resolved := 0
	pass := 0
	for resolved < len(pool) {
		pass++
		count := 0
		for i, e := range pool {
			done, err := e.resolveRefs(i, pool)
			if err != nil {
				return err
			}
			if done {
				count++
			}
		}
		Logger().Debug("constant pool resolution pass",
			zap.Int("pass", pass),
			zap.Int("resolved", count),
			zap.Int("total", len(pool)))
		if count == resolved {
			return cferrors.Unresolvable()
		}
		resolved = count
	}
	return nil
}

// resolveRefs attempts to resolve each outgoing reference of the entry in
// order, stopping at the first one whose target is not ready. Returns true
// when every reference is resolved.
func (e *Entry) resolveRefs(index int, pool Pool) (bool, error) {
	for i := range e.refs {
		ok, err := e.refs[i].resolve(index, pool)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
