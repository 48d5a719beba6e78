package classfile

import (
	"errors"
	"math"

	"go.uber.org/zap"

	cferrors "github.com/jvmtools/classfile/errors"
	"github.com/jvmtools/classfile/internal/binary"
	"github.com/jvmtools/classfile/internal/mutf8"
)

// ErrInvalidMagic is returned when the buffer does not start with 0xCAFEBABE.
var ErrInvalidMagic = errors.New("invalid class file magic number")

// ParseClass parses a class file through its constant pool and class
// references: magic, version, the decoded+resolved+validated pool, access
// flags, this_class, super_class and the interfaces table. Field, method and
// attribute parsing belong to other readers.
func ParseClass(data []byte) (*ClassFile, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32()
	if err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	c := &ClassFile{}
	if c.MinorVersion, err = r.ReadU16(); err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}
	if c.MajorVersion, err = r.ReadU16(); err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}

	count, err := r.ReadU16()
	if err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}
	if c.Pool, err = readConstantPool(r, count, c.MajorVersion); err != nil {
		return nil, err
	}

	if c.AccessFlags, err = r.ReadU16(); err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}
	if c.ThisClass, err = readPoolRef(r, c.Pool, KindClassInfo); err != nil {
		return nil, err
	}
	// java/lang/Object has no superclass; its slot holds index 0.
	if c.SuperClass, err = readPoolRef(r, c.Pool, KindClassOrZero); err != nil {
		return nil, err
	}

	ifaceCount, err := r.ReadU16()
	if err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}
	c.Interfaces = make([]*Entry, ifaceCount)
	for i := range c.Interfaces {
		if c.Interfaces[i], err = readPoolRef(r, c.Pool, KindClassInfo); err != nil {
			return nil, err
		}
	}

	Logger().Debug("parsed class file",
		zap.Uint16("major", c.MajorVersion),
		zap.Uint16("minor", c.MinorVersion),
		zap.Int("pool_entries", len(c.Pool)),
		zap.String("this_class", c.ThisClassName()))

	return c, nil
}

// DecodePool decodes a constant pool from data starting at offset, resolves
// every reference and validates the result against major. It returns the
// pool and the offset of the first byte after it, so callers parsing an
// enclosing class file can continue from there. On error the pool must be
// discarded.
func DecodePool(data []byte, offset int, count, major uint16) (Pool, int, error) {
	r := binary.NewReader(data)
	if err := r.Reset(offset); err != nil {
		return nil, 0, cferrors.InvalidData(cferrors.PhaseDecode, err.Error())
	}
	pool, err := readConstantPool(r, count, major)
	if err != nil {
		return nil, 0, err
	}
	return pool, r.Position(), nil
}

// readConstantPool runs the full pipeline: decode, resolve, validate.
func readConstantPool(r *binary.Reader, count, major uint16) (Pool, error) {
	pool, err := decodePool(r, count)
	if err != nil {
		return nil, err
	}
	if err := resolve(pool); err != nil {
		return nil, err
	}
	if err := validate(pool, major); err != nil {
		return nil, err
	}
	return pool, nil
}

// decodePool reads count-1 entries (the declared count includes the
// reserved index 0). References stay unresolved: their targets may appear
// later in the stream.
func decodePool(r *binary.Reader, count uint16) (Pool, error) {
	pool := make(Pool, 0, count)
	pool = append(pool, &Entry{Kind: KindZero})

	for index := uint16(1); index < count; {
		tagOffset := r.Position()
		tag, err := r.ReadU8()
		if err != nil {
			return nil, truncation(cferrors.PhaseDecode, r, err)
		}

		var e *Entry
		switch tag {
		case TagUtf8:
			e, err = readUtf8(r)
		case TagInteger:
			e, err = readInteger(r)
		case TagFloat:
			e, err = readFloat(r)
		case TagLong:
			e, err = readLong(r)
		case TagDouble:
			e, err = readDouble(r)
		case TagClass:
			e, err = readSingleRef(r, KindClassInfo)
		case TagString:
			e, err = readSingleRef(r, KindString)
		case TagFieldRef:
			e, err = readDoubleRef(r, KindFieldRef)
		case TagMethodRef:
			e, err = readDoubleRef(r, KindMethodRef)
		case TagInterfaceMethodRef:
			e, err = readDoubleRef(r, KindInterfaceMethodRef)
		case TagNameAndType:
			e, err = readDoubleRef(r, KindNameAndType)
		case TagMethodHandle:
			e, err = readMethodHandle(r)
		case TagMethodType:
			e, err = readSingleRef(r, KindMethodType)
		case TagInvokeDynamic:
			e, err = readInvokeDynamic(r)
		default:
			return nil, cferrors.UnknownTag(tag, tagOffset)
		}
		if err != nil {
			return nil, err
		}

		pool = append(pool, e)
		index++

		// Long and Double constants occupy two pool slots; the second
		// slot is never a valid entry.
		if tag == TagLong || tag == TagDouble {
			pool = append(pool, &Entry{Kind: KindUnused})
			index++
		}
	}

	return pool, nil
}

func readUtf8(r *binary.Reader) (*Entry, error) {
	length, err := r.ReadU16()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	start := r.Position()
	raw, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	text, err := mutf8.Decode(raw)
	if err != nil {
		return nil, cferrors.MalformedUTF8(start, start+int(length), err)
	}
	return &Entry{Kind: KindUtf8, Text: text}, nil
}

// The numeric readers reinterpret the raw big-endian bytes bit for bit; no
// range checks beyond what the field width guarantees.

func readInteger(r *binary.Reader) (*Entry, error) {
	v, err := r.ReadU32()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	return &Entry{Kind: KindInteger, Int: int32(v)}, nil
}

func readFloat(r *binary.Reader) (*Entry, error) {
	v, err := r.ReadU32()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	return &Entry{Kind: KindFloat, Float: math.Float32frombits(v)}, nil
}

func readLong(r *binary.Reader) (*Entry, error) {
	v, err := r.ReadU64()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	return &Entry{Kind: KindLong, Long: int64(v)}, nil
}

func readDouble(r *binary.Reader) (*Entry, error) {
	v, err := r.ReadU64()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	return &Entry{Kind: KindDouble, Double: math.Float64frombits(v)}, nil
}

// readRawRef reads a 16-bit pool index as an unresolved reference.
func readRawRef(r *binary.Reader) (Ref, error) {
	ix, err := r.ReadU16()
	if err != nil {
		return Ref{}, truncation(cferrors.PhaseDecode, r, err)
	}
	return Ref{index: ix}, nil
}

func readSingleRef(r *binary.Reader, kind Kind) (*Entry, error) {
	ref, err := readRawRef(r)
	if err != nil {
		return nil, err
	}
	return &Entry{Kind: kind, refs: []Ref{ref}}, nil
}

func readDoubleRef(r *binary.Reader, kind Kind) (*Entry, error) {
	first, err := readRawRef(r)
	if err != nil {
		return nil, err
	}
	second, err := readRawRef(r)
	if err != nil {
		return nil, err
	}
	return &Entry{Kind: kind, refs: []Ref{first, second}}, nil
}

func readMethodHandle(r *binary.Reader) (*Entry, error) {
	kindOffset := r.Position()
	kind, err := r.ReadU8()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	if kind < byte(RefGetField) || kind > byte(RefInvokeInterface) {
		return nil, cferrors.New(cferrors.PhaseDecode, cferrors.KindInvalidData).
			Detail("unexpected reference kind %d when reading CONSTANT_MethodHandle at offset %d", kind, kindOffset).
			Build()
	}
	member, err := readRawRef(r)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Kind:    KindMethodHandle,
		RefKind: ReferenceKind(kind),
		refs:    []Ref{member},
	}, nil
}

func readInvokeDynamic(r *binary.Reader) (*Entry, error) {
	// The bootstrap method index points into the BootstrapMethods
	// attribute, not the pool; it stays raw here.
	bootstrap, err := r.ReadU16()
	if err != nil {
		return nil, truncation(cferrors.PhaseDecode, r, err)
	}
	nameAndType, err := readRawRef(r)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Kind:           KindInvokeDynamic,
		BootstrapIndex: bootstrap,
		refs:           []Ref{nameAndType},
	}, nil
}

// readPoolRef reads a 16-bit index from the stream and returns the pool
// entry it names, checked against the allowed kind set.
func readPoolRef(r *binary.Reader, pool Pool, allowed Kind) (*Entry, error) {
	ix, err := r.ReadU16()
	if err != nil {
		return nil, truncation(cferrors.PhaseParse, r, err)
	}
	return pool.Ref(ix, allowed)
}

// truncation maps reader EOF errors to the truncation error kind; other
// errors pass through untouched.
func truncation(phase cferrors.Phase, r *binary.Reader, err error) error {
	if errors.Is(err, binary.ErrUnexpectedEOF) {
		return cferrors.Truncation(phase, r.Position(), err)
	}
	return err
}
