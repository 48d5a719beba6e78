package classfile

// Magic is the class file magic number (0xCAFEBABE, big-endian).
const Magic uint32 = 0xCAFEBABE

// Constant pool tag bytes as defined by the class file format. Each entry in
// the constant pool starts with one of these tags; tags 2, 13, 14 and 17 are
// unassigned in the format revisions this reader supports and any other
// value is a decode error.
const (
	TagUtf8               byte = 1
	TagInteger            byte = 3
	TagFloat              byte = 4
	TagLong               byte = 5
	TagDouble             byte = 6
	TagClass              byte = 7
	TagString             byte = 8
	TagFieldRef           byte = 9
	TagMethodRef          byte = 10
	TagInterfaceMethodRef byte = 11
	TagNameAndType        byte = 12
	TagMethodHandle       byte = 15
	TagMethodType         byte = 16
	TagInvokeDynamic      byte = 18
)

// MajorRelaxedMethodHandles is the class file major version (Java SE 8) at
// which invokestatic/invokespecial method handles were allowed to target
// InterfaceMethodRef entries in addition to MethodRef entries.
const MajorRelaxedMethodHandles uint16 = 52

// Class access flags (the subset meaningful on the class itself).
const (
	AccPublic     uint16 = 0x0001
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020
	AccInterface  uint16 = 0x0200
	AccAbstract   uint16 = 0x0400
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000
	AccEnum       uint16 = 0x4000
)

// ReferenceKind is the access mode carried by a MethodHandle entry. It
// determines which member entry kind the handle must reference.
type ReferenceKind byte

const (
	RefGetField ReferenceKind = iota + 1
	RefGetStatic
	RefPutField
	RefPutStatic
	RefInvokeVirtual
	RefInvokeStatic
	RefInvokeSpecial
	RefNewInvokeSpecial
	RefInvokeInterface
)

func (k ReferenceKind) String() string {
	switch k {
	case RefGetField:
		return "getfield"
	case RefGetStatic:
		return "getstatic"
	case RefPutField:
		return "putfield"
	case RefPutStatic:
		return "putstatic"
	case RefInvokeVirtual:
		return "invokevirtual"
	case RefInvokeStatic:
		return "invokestatic"
	case RefInvokeSpecial:
		return "invokespecial"
	case RefNewInvokeSpecial:
		return "newinvokespecial"
	case RefInvokeInterface:
		return "invokeinterface"
	default:
		return "unknown"
	}
}

// targetKinds returns the entry kinds a MethodHandle with this reference
// kind may point at. Before major version 52, invokestatic and invokespecial
// handles had to target MethodRef entries; from 52 on InterfaceMethodRef is
// also permitted.
func (k ReferenceKind) targetKinds(major uint16) Kind {
	switch k {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		return KindFieldRef
	case RefInvokeVirtual, RefNewInvokeSpecial:
		return KindMethodRef
	case RefInvokeStatic, RefInvokeSpecial:
		if major < MajorRelaxedMethodHandles {
			return KindMethodRef
		}
		return KindNewMethodRefs
	case RefInvokeInterface:
		return KindInterfaceMethodRef
	default:
		return 0
	}
}
