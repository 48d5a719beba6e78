package classfile

// ClassFile holds the parsed slice of a class file this package covers: the
// version header, the constant pool and the class references that resolve
// through it. Fields, methods and attributes are parsed by other readers,
// which receive the validated Pool and continue from the offset DecodePool
// reports.
type ClassFile struct {
	Pool         Pool
	Interfaces   []*Entry // ClassInfo entries, direct superinterfaces in declaration order
	ThisClass    *Entry   // ClassInfo
	SuperClass   *Entry   // ClassInfo, or the Zero sentinel for java/lang/Object
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16
}

// ThisClassName returns the binary name of the class (e.g. "java/lang/String").
func (c *ClassFile) ThisClassName() string {
	return c.ThisClass.ClassName()
}

// SuperClassName returns the binary name of the superclass, or "" when the
// superclass slot holds index 0 (java/lang/Object).
func (c *ClassFile) SuperClassName() string {
	if c.SuperClass.Kind == KindZero {
		return ""
	}
	return c.SuperClass.ClassName()
}

// InterfaceNames returns the binary names of the direct superinterfaces.
func (c *ClassFile) InterfaceNames() []string {
	names := make([]string, len(c.Interfaces))
	for i, e := range c.Interfaces {
		names[i] = e.ClassName()
	}
	return names
}
