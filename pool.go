package classfile

import (
	"fmt"
	"strings"

	cferrors "github.com/jvmtools/classfile/errors"
)

// Kind identifies a constant pool entry kind. Each kind is a single bit, so
// a Kind value doubles as a set of kinds: validation checks test a target's
// kind bit against a union of allowed kinds.
type Kind uint16

const (
	KindZero Kind = 1 << iota // index 0 sentinel
	KindUtf8
	KindInteger
	KindFloat
	KindLong
	KindDouble
	KindClassInfo
	KindString
	KindFieldRef
	KindMethodRef
	KindInterfaceMethodRef
	KindNameAndType
	KindMethodHandle
	KindMethodType
	KindInvokeDynamic
	KindUnused // second slot of a Long or Double
)

// Kind unions used by reference checks. Several reference slots accept the
// zero sentinel in place of a real target (e.g. the superclass of
// java/lang/Object).
const (
	KindClassOrZero       = KindZero | KindClassInfo
	KindNewMethodRefs     = KindMethodRef | KindInterfaceMethodRef
	KindLoadableConstants = KindInteger | KindFloat | KindLong | KindDouble | KindString
	KindUtf8OrZero        = KindZero | KindUtf8
	KindNameAndTypeOrZero = KindZero | KindNameAndType
)

// Has reports whether any kind in other is present in the set k.
func (k Kind) Has(other Kind) bool {
	return k&other != 0
}

var kindNames = map[Kind]string{
	KindZero:               "Zero",
	KindUtf8:               "Utf8",
	KindInteger:            "Integer",
	KindFloat:              "Float",
	KindLong:               "Long",
	KindDouble:             "Double",
	KindClassInfo:          "ClassInfo",
	KindString:             "String",
	KindFieldRef:           "FieldRef",
	KindMethodRef:          "MethodRef",
	KindInterfaceMethodRef: "InterfaceMethodRef",
	KindNameAndType:        "NameAndType",
	KindMethodHandle:       "MethodHandle",
	KindMethodType:         "MethodType",
	KindInvokeDynamic:      "InvokeDynamic",
	KindUnused:             "Unused",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	var parts []string
	for bit := KindZero; bit != 0 && bit <= KindUnused; bit <<= 1 {
		if k&bit != 0 {
			parts = append(parts, kindNames[bit])
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Kind(0x%04x)", uint16(k))
	}
	return strings.Join(parts, "|")
}

// Ref is a reference from one constant pool entry to another. It starts as
// the raw 16-bit index read from the byte stream and is linked to its target
// entry during resolution. The transition is one-directional: once resolved
// a Ref never reverts.
type Ref struct {
	target *Entry
	index  uint16
}

// Index returns the raw pool index as read from the class file.
func (r *Ref) Index() uint16 {
	return r.index
}

// Resolved reports whether the reference has been linked to its target.
func (r *Ref) Resolved() bool {
	return r.target != nil
}

// Target returns the referenced entry. It panics if the reference is still
// unresolved; callers only see pools that completed resolution.
func (r *Ref) Target() *Entry {
	if r.target == nil {
		panic("classfile: Target called on an unresolved constant pool reference")
	}
	return r.target
}

// resolve attempts to link the reference. myIndex is the index of the entry
// holding this reference. Returns true when the reference is resolved,
// false when the target entry is not yet fully resolved itself.
func (r *Ref) resolve(myIndex int, pool Pool) (bool, error) {
	if r.target != nil {
		return true, nil
	}
	target := int(r.index)
	if target == myIndex {
		return false, cferrors.SelfReference(myIndex)
	}
	if target >= len(pool) {
		return false, cferrors.OutOfBounds(myIndex, target, len(pool))
	}
	if !pool[target].isResolved() {
		return false, nil
	}
	r.target = pool[target]
	return true, nil
}

// Entry is a single constant pool entry. Kind discriminates which payload
// fields are meaningful. Entries are immutable after decoding except for the
// resolution state of their outgoing references.
type Entry struct {
	Text   string  // Utf8
	Long   int64   // Long
	Double float64 // Double
	Int    int32   // Integer
	Float  float32 // Float
	Kind   Kind

	// RefKind is the access mode of a MethodHandle entry.
	RefKind ReferenceKind

	// BootstrapIndex is an InvokeDynamic entry's index into the
	// BootstrapMethods attribute table. It is not a constant pool
	// reference and is resolved by the attribute reader, not here.
	BootstrapIndex uint16

	// refs holds the outgoing constant pool references in wire order.
	refs []Ref
}

// Outgoing reference accessors. Each is valid only for the kinds that carry
// the slot; calling one on the wrong kind is a programming error.

// Name returns the name reference of a ClassInfo or NameAndType entry.
func (e *Entry) Name() *Ref {
	e.mustBe(KindClassInfo|KindNameAndType, "Name")
	return &e.refs[0]
}

// Value returns the string value reference of a String entry.
func (e *Entry) Value() *Ref {
	e.mustBe(KindString, "Value")
	return &e.refs[0]
}

// Class returns the class reference of a FieldRef, MethodRef or
// InterfaceMethodRef entry.
func (e *Entry) Class() *Ref {
	e.mustBe(KindFieldRef|KindMethodRef|KindInterfaceMethodRef, "Class")
	return &e.refs[0]
}

// NameAndType returns the name-and-type reference of a member ref or
// InvokeDynamic entry.
func (e *Entry) NameAndType() *Ref {
	e.mustBe(KindFieldRef|KindMethodRef|KindInterfaceMethodRef|KindInvokeDynamic, "NameAndType")
	if e.Kind == KindInvokeDynamic {
		return &e.refs[0]
	}
	return &e.refs[1]
}

// Descriptor returns the descriptor reference of a NameAndType or MethodType
// entry.
func (e *Entry) Descriptor() *Ref {
	e.mustBe(KindNameAndType|KindMethodType, "Descriptor")
	if e.Kind == KindMethodType {
		return &e.refs[0]
	}
	return &e.refs[1]
}

// Member returns the member reference of a MethodHandle entry.
func (e *Entry) Member() *Ref {
	e.mustBe(KindMethodHandle, "Member")
	return &e.refs[0]
}

func (e *Entry) mustBe(allowed Kind, op string) {
	if !allowed.Has(e.Kind) {
		panic(fmt.Sprintf("classfile: %s called on %s constant pool entry", op, e.Kind))
	}
}

// Utf8 returns the decoded text of a Utf8 entry. It panics on any other
// kind: once the pool has validated, calling this on a non-Utf8 entry is a
// programming error in the caller, not a data error in the class file.
func (e *Entry) Utf8() string {
	if e.Kind != KindUtf8 {
		panic(fmt.Sprintf("classfile: Utf8 called on %s constant pool entry", e.Kind))
	}
	return e.Text
}

// ClassName dereferences a ClassInfo entry straight through to its name's
// decoded text. Same contract as Utf8: wrong kind is a programming error.
func (e *Entry) ClassName() string {
	if e.Kind != KindClassInfo {
		panic(fmt.Sprintf("classfile: ClassName called on %s constant pool entry", e.Kind))
	}
	return e.Name().Target().Utf8()
}

// isResolved reports whether every outgoing reference of the entry has been
// linked. Entries without references are trivially resolved.
func (e *Entry) isResolved() bool {
	for i := range e.refs {
		if !e.refs[i].Resolved() {
			return false
		}
	}
	return true
}

// Pool is a decoded constant pool: a fixed-length, 1-indexed entry table
// with the Zero sentinel at index 0. After DecodePool or ParseClass return
// it, the pool is fully resolved, validated and read-only.
type Pool []*Entry

// Entry returns the entry at index with a bounds check.
func (p Pool) Entry(index uint16) (*Entry, error) {
	if int(index) >= len(p) {
		return nil, cferrors.InvalidData(cferrors.PhaseParse,
			fmt.Sprintf("out-of-bounds index %d in constant pool lookup (pool length %d)", index, len(p)))
	}
	return p[index], nil
}

// Ref returns the entry at index after checking its kind against the allowed
// set. This is the lookup used by class file structures outside the pool
// (this_class, super_class, attribute references); allowed sets containing
// KindZero accept index 0 without touching the sentinel's payload.
func (p Pool) Ref(index uint16, allowed Kind) (*Entry, error) {
	if int(index) >= len(p) {
		return nil, cferrors.InvalidData(cferrors.PhaseParse,
			fmt.Sprintf("out-of-bounds index %d in constant pool reference (pool length %d)", index, len(p)))
	}
	e := p[index]
	if !allowed.Has(e.Kind) {
		return nil, cferrors.TypeMismatch(int(index))
	}
	return e, nil
}
