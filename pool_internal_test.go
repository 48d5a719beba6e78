package classfile

import (
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUtf8, "Utf8"},
		{KindInterfaceMethodRef, "InterfaceMethodRef"},
		{KindNewMethodRefs, "MethodRef|InterfaceMethodRef"},
		{KindUtf8OrZero, "Zero|Utf8"},
		{Kind(0), "Kind(0x0000)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%#x).String(): got %q, want %q", uint16(tt.kind), got, tt.want)
		}
	}
}

func TestKindHas(t *testing.T) {
	if !KindClassOrZero.Has(KindZero) {
		t.Error("ClassOrZero should contain Zero")
	}
	if !KindClassOrZero.Has(KindClassInfo) {
		t.Error("ClassOrZero should contain ClassInfo")
	}
	if KindClassOrZero.Has(KindUtf8) {
		t.Error("ClassOrZero should not contain Utf8")
	}
	if !KindLoadableConstants.Has(KindString) {
		t.Error("LoadableConstants should contain String")
	}
}

func TestReferenceKindString(t *testing.T) {
	if RefNewInvokeSpecial.String() != "newinvokespecial" {
		t.Errorf("got %q", RefNewInvokeSpecial.String())
	}
	if ReferenceKind(0).String() != "unknown" {
		t.Errorf("got %q", ReferenceKind(0).String())
	}
}

func TestEntryUtf8PanicsOnWrongKind(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for Utf8 on Integer entry")
		}
	}()
	e := &Entry{Kind: KindInteger, Int: 3}
	_ = e.Utf8()
}

func TestRefTargetPanicsUnresolved(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for Target on unresolved reference")
		}
	}()
	r := Ref{index: 1}
	_ = r.Target()
}

func TestAccessorSlotSelection(t *testing.T) {
	// 1: InvokeDynamic -> 2: NameAndType -> 3: name, 4: descriptor.
	pool := resolvedPool(t,
		&Entry{Kind: KindInvokeDynamic, BootstrapIndex: 3, refs: []Ref{{index: 2}}},
		natEntry(3, 4),
		utf8Entry("makeConcat"),
		utf8Entry("()Ljava/lang/String;"),
	)

	indy := pool[1]
	nat := indy.NameAndType().Target()
	if got := nat.Name().Target().Utf8(); got != "makeConcat" {
		t.Errorf("name: got %q", got)
	}
	if got := nat.Descriptor().Target().Utf8(); got != "()Ljava/lang/String;" {
		t.Errorf("descriptor: got %q", got)
	}
	if indy.BootstrapIndex != 3 {
		t.Errorf("bootstrap index: got %d", indy.BootstrapIndex)
	}
}

func TestPoolRefAllowZero(t *testing.T) {
	pool := resolvedPool(t,
		classEntry(2),
		utf8Entry("java/lang/Object"),
	)

	// The zero sentinel satisfies an allow-zero set without its payload
	// ever being read.
	e, err := pool.Ref(0, KindClassOrZero)
	if err != nil {
		t.Fatalf("Ref(0, ClassOrZero): %v", err)
	}
	if e.Kind != KindZero {
		t.Errorf("kind: got %s, want Zero", e.Kind)
	}

	if _, err := pool.Ref(0, KindClassInfo); err == nil {
		t.Error("Ref(0, ClassInfo): expected type mismatch")
	}

	if _, err := pool.Ref(9, KindClassOrZero); err == nil {
		t.Error("Ref(9, ...): expected out-of-bounds error")
	}

	e, err = pool.Ref(1, KindClassOrZero)
	if err != nil {
		t.Fatalf("Ref(1, ClassOrZero): %v", err)
	}
	if e.ClassName() != "java/lang/Object" {
		t.Errorf("class name: got %q", e.ClassName())
	}
}

func TestPoolEntryBounds(t *testing.T) {
	pool := resolvedPool(t, utf8Entry("x"))

	if _, err := pool.Entry(1); err != nil {
		t.Errorf("Entry(1): %v", err)
	}
	if _, err := pool.Entry(2); err == nil {
		t.Error("Entry(2): expected error")
	}
}
