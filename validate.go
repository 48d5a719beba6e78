package classfile

import (
	cferrors "github.com/jvmtools/classfile/errors"
)

// validate checks every resolved reference in the pool against the kind its
// slot requires. Entries are visited in index order and the first violation
// wins, reported with the referring entry's index (never the target's).
func validate(pool Pool, major uint16) error {
	for i, e := range pool {
		if !e.refsValid(major) {
			return cferrors.TypeMismatch(i)
		}
	}
	return nil
}

// refsValid checks the entry's outgoing references against the
// type-compatibility matrix. The allowed sets are aligned with the refs in
// wire order.
func (e *Entry) refsValid(major uint16) bool {
	allowed := e.allowedTargets(major)
	for i := range allowed {
		if !allowed[i].Has(e.refs[i].Target().Kind) {
			return false
		}
	}
	return true
}

// allowedTargets returns the required target kind set for each outgoing
// reference of the entry, in the same order as the refs. Kinds without
// references return nil. Only the MethodHandle row varies by class file
// version (see ReferenceKind.targetKinds).
func (e *Entry) allowedTargets(major uint16) []Kind {
	switch e.Kind {
	case KindClassInfo, KindString, KindMethodType:
		return []Kind{KindUtf8}
	case KindFieldRef, KindMethodRef, KindInterfaceMethodRef:
		return []Kind{KindClassInfo, KindNameAndType}
	case KindNameAndType:
		return []Kind{KindUtf8, KindUtf8}
	case KindMethodHandle:
		return []Kind{e.RefKind.targetKinds(major)}
	case KindInvokeDynamic:
		return []Kind{KindNameAndType}
	default:
		return nil
	}
}
