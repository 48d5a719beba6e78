package classfile_test

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	classfile "github.com/jvmtools/classfile"
	cferrors "github.com/jvmtools/classfile/errors"
	"github.com/jvmtools/classfile/internal/mutf8"
)

// poolFixture assembles constant pool bytes: a declared entry count followed
// by tagged entries. The declared count includes the reserved index 0.
type poolFixture struct {
	entries []byte
	count   uint16
}

func (f *poolFixture) raw(b ...byte) *poolFixture {
	f.entries = append(f.entries, b...)
	return f
}

func (f *poolFixture) u16(v uint16) *poolFixture {
	return f.raw(byte(v>>8), byte(v))
}

func (f *poolFixture) utf8(s string) *poolFixture {
	data := mutf8.Encode(s)
	f.raw(classfile.TagUtf8).u16(uint16(len(data))).raw(data...)
	f.count++
	return f
}

func (f *poolFixture) class(nameIndex uint16) *poolFixture {
	f.raw(classfile.TagClass).u16(nameIndex)
	f.count++
	return f
}

func (f *poolFixture) long(v uint64) *poolFixture {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	f.raw(classfile.TagLong).raw(b[:]...)
	f.count += 2
	return f
}

func (f *poolFixture) nameAndType(nameIndex, descIndex uint16) *poolFixture {
	f.raw(classfile.TagNameAndType).u16(nameIndex).u16(descIndex)
	f.count++
	return f
}

func (f *poolFixture) methodRef(classIndex, natIndex uint16) *poolFixture {
	f.raw(classfile.TagMethodRef).u16(classIndex).u16(natIndex)
	f.count++
	return f
}

func (f *poolFixture) interfaceMethodRef(classIndex, natIndex uint16) *poolFixture {
	f.raw(classfile.TagInterfaceMethodRef).u16(classIndex).u16(natIndex)
	f.count++
	return f
}

func (f *poolFixture) methodHandle(kind classfile.ReferenceKind, memberIndex uint16) *poolFixture {
	f.raw(classfile.TagMethodHandle, byte(kind)).u16(memberIndex)
	f.count++
	return f
}

func (f *poolFixture) bytes() []byte {
	out := []byte{byte((f.count + 1) >> 8), byte(f.count + 1)}
	return append(out, f.entries...)
}

// decode runs the fixture through DecodePool at the given major version.
func (f *poolFixture) decode(t *testing.T, major uint16) (classfile.Pool, error) {
	t.Helper()
	data := f.bytes()
	pool, next, err := classfile.DecodePool(data, 2, f.count+1, major)
	if err == nil && next != len(data) {
		t.Errorf("DecodePool final offset: got %d, want %d", next, len(data))
	}
	return pool, err
}

func TestDecodeUtf8Hello(t *testing.T) {
	f := new(poolFixture).utf8("Hello")
	pool, err := f.decode(t, 52)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("pool length: got %d, want 2", len(pool))
	}
	if pool[1].Kind != classfile.KindUtf8 {
		t.Fatalf("entry kind: got %s, want Utf8", pool[1].Kind)
	}
	if pool[1].Utf8() != "Hello" {
		t.Errorf("decoded text: got %q, want %q", pool[1].Utf8(), "Hello")
	}
}

func TestDecodeLongSlotArithmetic(t *testing.T) {
	// Entries at 1 and 2, a Long at 3 (consuming slot 4), next entry at 5.
	f := new(poolFixture).
		utf8("first").
		utf8("second").
		long(0x0102030405060708).
		utf8("after")
	pool, err := f.decode(t, 52)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if len(pool) != 6 {
		t.Fatalf("pool length: got %d, want 6", len(pool))
	}
	if pool[3].Kind != classfile.KindLong {
		t.Errorf("index 3 kind: got %s, want Long", pool[3].Kind)
	}
	if pool[3].Long != 0x0102030405060708 {
		t.Errorf("long value: got 0x%016x", pool[3].Long)
	}
	if pool[4].Kind != classfile.KindUnused {
		t.Errorf("index 4 kind: got %s, want Unused", pool[4].Kind)
	}
	if pool[5].Kind != classfile.KindUtf8 || pool[5].Utf8() != "after" {
		t.Errorf("index 5: got %s %q, want Utf8 \"after\"", pool[5].Kind, pool[5].Text)
	}
}

func TestDecodeNumericBitPatterns(t *testing.T) {
	// Float 0x3F800000 is 1.0, Integer 0xFFFFFFFF is -1. Values come from
	// raw bit reinterpretation, not parsing.
	f := new(poolFixture)
	f.raw(classfile.TagInteger, 0xFF, 0xFF, 0xFF, 0xFF)
	f.count++
	f.raw(classfile.TagFloat, 0x3F, 0x80, 0x00, 0x00)
	f.count++

	pool, err := f.decode(t, 52)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if pool[1].Int != -1 {
		t.Errorf("integer: got %d, want -1", pool[1].Int)
	}
	if pool[2].Float != 1.0 {
		t.Errorf("float: got %v, want 1.0", pool[2].Float)
	}
}

func TestDecodeForwardAndBackwardReferences(t *testing.T) {
	// ClassInfo at 1 references forward to 2; String at 3 references
	// backward to 2. Both must resolve.
	f := new(poolFixture).
		class(2).
		utf8("java/lang/Object")
	f.raw(classfile.TagString).u16(2)
	f.count++

	pool, err := f.decode(t, 52)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if pool[1].ClassName() != "java/lang/Object" {
		t.Errorf("class name: got %q", pool[1].ClassName())
	}
	if got := pool[3].Value().Target().Utf8(); got != "java/lang/Object" {
		t.Errorf("string value: got %q", got)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	f := new(poolFixture)
	f.raw(2) // tag 2 is unassigned
	f.count++

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseDecode, Kind: cferrors.KindUnknownTag}) {
		t.Errorf("expected unknown_tag error, got %v", err)
	}
	if !strings.Contains(err.Error(), "type 2") {
		t.Errorf("error %q does not name the tag value", err.Error())
	}
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name    string
		fixture func() *poolFixture
	}{
		{"missing tag", func() *poolFixture {
			f := new(poolFixture)
			f.count = 1 // declares an entry that is not there
			return f
		}},
		{"utf8 length past end", func() *poolFixture {
			f := new(poolFixture)
			f.raw(classfile.TagUtf8, 0x00, 0x10, 'a')
			f.count++
			return f
		}},
		{"integer cut short", func() *poolFixture {
			f := new(poolFixture)
			f.raw(classfile.TagInteger, 0x01)
			f.count++
			return f
		}},
		{"long cut short", func() *poolFixture {
			f := new(poolFixture)
			f.raw(classfile.TagLong, 0x01, 0x02, 0x03)
			f.count++
			return f
		}},
		{"ref index cut short", func() *poolFixture {
			f := new(poolFixture)
			f.raw(classfile.TagClass, 0x00)
			f.count++
			return f
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fixture().decode(t, 52)
			if err == nil {
				t.Fatal("expected truncation error")
			}
			if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseDecode, Kind: cferrors.KindTruncation}) {
				t.Errorf("expected truncation error, got %v", err)
			}
		})
	}
}

func TestDecodeMalformedUtf8(t *testing.T) {
	f := new(poolFixture)
	f.raw(classfile.TagUtf8, 0x00, 0x01, 0x00) // raw NUL byte is invalid
	f.count++

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected error for malformed modified UTF-8")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseDecode, Kind: cferrors.KindMalformedUTF8}) {
		t.Errorf("expected malformed_utf8 error, got %v", err)
	}
}

func TestDecodeMethodHandleBadReferenceKind(t *testing.T) {
	f := new(poolFixture)
	f.raw(classfile.TagMethodHandle, 10).u16(1) // kinds stop at 9
	f.count++

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected error for reference kind 10")
	}
	if !strings.Contains(err.Error(), "reference kind 10") {
		t.Errorf("error %q does not name the bad kind", err.Error())
	}
}

func TestDecodeSelfReference(t *testing.T) {
	f := new(poolFixture).class(1)

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected self-reference error")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseResolve, Kind: cferrors.KindSelfReference}) {
		t.Errorf("expected self_reference error, got %v", err)
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error %q does not name index 1", err.Error())
	}
}

func TestDecodeOutOfBoundsReference(t *testing.T) {
	f := new(poolFixture).class(99)

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected out-of-bounds error")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseResolve, Kind: cferrors.KindOutOfBounds}) {
		t.Errorf("expected out_of_bounds error, got %v", err)
	}
	if !strings.Contains(err.Error(), "99") {
		t.Errorf("error %q does not name the target index", err.Error())
	}
}

func TestDecodeUnresolvableCycle(t *testing.T) {
	// Two NameAndType entries that reference each other: no pass can make
	// progress, so resolution must stall rather than loop.
	f := new(poolFixture).
		nameAndType(2, 2).
		nameAndType(1, 1)

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected unresolvable error")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseResolve, Kind: cferrors.KindUnresolvable}) {
		t.Errorf("expected unresolvable error, got %v", err)
	}
	if errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseResolve, Kind: cferrors.KindSelfReference}) {
		t.Error("cycle must not be reported as self-reference")
	}
}

func TestDecodeTypeMismatchBlamesReferrer(t *testing.T) {
	// ClassInfo at 1 names a Float at 2. Validation must blame entry 1,
	// not the Float it points at.
	f := new(poolFixture).class(2)
	f.raw(classfile.TagFloat, 0x3F, 0x80, 0x00, 0x00)
	f.count++

	_, err := f.decode(t, 52)
	if err == nil {
		t.Fatal("expected type mismatch error")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseValidate, Kind: cferrors.KindTypeMismatch}) {
		t.Errorf("expected type_mismatch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "entry 1") {
		t.Errorf("error %q does not blame entry 1", err.Error())
	}
}

// methodHandleFixture builds a pool with an invokestatic MethodHandle
// targeting an InterfaceMethodRef, the version-gated case.
func methodHandleFixture() *poolFixture {
	return new(poolFixture).
		methodHandle(classfile.RefInvokeStatic, 2). // 1
		interfaceMethodRef(3, 5).                   // 2
		class(4).                                   // 3
		utf8("java/util/List").                     // 4
		nameAndType(6, 7).                          // 5
		utf8("of").                                 // 6
		utf8("()Ljava/util/List;")                  // 7
}

func TestMethodHandleInvokeStaticVersionBoundary(t *testing.T) {
	if _, err := methodHandleFixture().decode(t, 52); err != nil {
		t.Errorf("major 52: expected success, got %v", err)
	}

	_, err := methodHandleFixture().decode(t, 51)
	if err == nil {
		t.Fatal("major 51: expected type mismatch")
	}
	if !errors.Is(err, &cferrors.Error{Phase: cferrors.PhaseValidate, Kind: cferrors.KindTypeMismatch}) {
		t.Errorf("major 51: expected type_mismatch error, got %v", err)
	}
}

func TestDecodeAllTags(t *testing.T) {
	f := new(poolFixture).
		utf8("Answer").            // 1
		class(1).                  // 2
		nameAndType(1, 4).         // 3
		utf8("()I").               // 4
		methodRef(2, 3)            // 5
	f.raw(classfile.TagString).u16(1)
	f.count++ // 6
	f.raw(classfile.TagFieldRef).u16(2).u16(3)
	f.count++ // 7
	f.raw(classfile.TagInterfaceMethodRef).u16(2).u16(3)
	f.count++ // 8
	f.methodHandle(classfile.RefInvokeVirtual, 5) // 9
	f.raw(classfile.TagMethodType).u16(4)
	f.count++ // 10
	f.raw(classfile.TagInvokeDynamic).u16(0).u16(3)
	f.count++ // 11
	f.long(42) // 12, 13
	f.raw(classfile.TagDouble, 0x40, 0x09, 0x21, 0xFB, 0x54, 0x44, 0x2D, 0x18)
	f.count += 2 // 14, 15

	pool, err := f.decode(t, 52)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}

	wantKinds := []classfile.Kind{
		classfile.KindZero,
		classfile.KindUtf8,
		classfile.KindClassInfo,
		classfile.KindNameAndType,
		classfile.KindUtf8,
		classfile.KindMethodRef,
		classfile.KindString,
		classfile.KindFieldRef,
		classfile.KindInterfaceMethodRef,
		classfile.KindMethodHandle,
		classfile.KindMethodType,
		classfile.KindInvokeDynamic,
		classfile.KindLong,
		classfile.KindUnused,
		classfile.KindDouble,
		classfile.KindUnused,
	}
	if len(pool) != len(wantKinds) {
		t.Fatalf("pool length: got %d, want %d", len(pool), len(wantKinds))
	}
	for i, want := range wantKinds {
		if pool[i].Kind != want {
			t.Errorf("index %d: got %s, want %s", i, pool[i].Kind, want)
		}
	}

	if pool[9].RefKind != classfile.RefInvokeVirtual {
		t.Errorf("method handle kind: got %s", pool[9].RefKind)
	}
	if pool[11].BootstrapIndex != 0 {
		t.Errorf("bootstrap index: got %d, want 0", pool[11].BootstrapIndex)
	}
	if pool[14].Double != 3.141592653589793 {
		t.Errorf("double: got %v", pool[14].Double)
	}
}
