package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jvmtools/classfile"
)

func main() {
	var (
		classPath   = flag.String("class", "", "Path to class file")
		verbose     = flag.Bool("v", false, "Verbose decode/resolve logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *classPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -class <file.class>")
		fmt.Fprintln(os.Stderr, "       inspect -class <file.class> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		classfile.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*classPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := inspect(*classPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	cf, err := classfile.ParseClass(data)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	fmt.Printf("Class:   %s\n", cf.ThisClassName())
	if super := cf.SuperClassName(); super != "" {
		fmt.Printf("Super:   %s\n", super)
	}
	fmt.Printf("Version: %d.%d (%s)\n", cf.MajorVersion, cf.MinorVersion, javaRelease(cf.MajorVersion))
	fmt.Printf("Access:  %s\n", accessFlagNames(cf.AccessFlags))
	if names := cf.InterfaceNames(); len(names) > 0 {
		fmt.Printf("Implements: %s\n", strings.Join(names, ", "))
	}

	fmt.Printf("\nConstant pool (%d slots):\n", len(cf.Pool)-1)
	for i, e := range cf.Pool {
		if i == 0 || e.Kind == classfile.KindUnused {
			continue
		}
		fmt.Printf("  #%-4d %-18s %s\n", i, e.Kind, entrySummary(e))
	}

	return nil
}

// javaRelease maps a class file major version to the Java release that
// produces it. Major 49 (Java SE 5) onward follows the major-44 rule.
func javaRelease(major uint16) string {
	if major >= 49 {
		return fmt.Sprintf("Java SE %d", major-44)
	}
	if major >= 45 {
		return fmt.Sprintf("Java 1.%d", major-44)
	}
	return "unknown release"
}

var accessFlags = []struct {
	flag uint16
	name string
}{
	{classfile.AccPublic, "public"},
	{classfile.AccFinal, "final"},
	{classfile.AccSuper, "super"},
	{classfile.AccInterface, "interface"},
	{classfile.AccAbstract, "abstract"},
	{classfile.AccSynthetic, "synthetic"},
	{classfile.AccAnnotation, "annotation"},
	{classfile.AccEnum, "enum"},
}

func accessFlagNames(flags uint16) string {
	var names []string
	for _, af := range accessFlags {
		if flags&af.flag != 0 {
			names = append(names, af.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%04x", flags)
	}
	return strings.Join(names, " ")
}

// entrySummary renders a one-line, fully dereferenced description of a
// constant pool entry. The pool has passed validation, so following
// references through the typed accessors cannot panic.
func entrySummary(e *classfile.Entry) string {
	switch e.Kind {
	case classfile.KindUtf8:
		return fmt.Sprintf("%q", e.Utf8())
	case classfile.KindInteger:
		return fmt.Sprintf("%d", e.Int)
	case classfile.KindFloat:
		return fmt.Sprintf("%g", e.Float)
	case classfile.KindLong:
		return fmt.Sprintf("%d", e.Long)
	case classfile.KindDouble:
		return fmt.Sprintf("%g", e.Double)
	case classfile.KindClassInfo:
		return e.ClassName()
	case classfile.KindString:
		return fmt.Sprintf("%q", e.Value().Target().Utf8())
	case classfile.KindFieldRef, classfile.KindMethodRef, classfile.KindInterfaceMethodRef:
		nat := e.NameAndType().Target()
		return fmt.Sprintf("%s.%s:%s",
			e.Class().Target().ClassName(),
			nat.Name().Target().Utf8(),
			nat.Descriptor().Target().Utf8())
	case classfile.KindNameAndType:
		return fmt.Sprintf("%s:%s", e.Name().Target().Utf8(), e.Descriptor().Target().Utf8())
	case classfile.KindMethodHandle:
		return fmt.Sprintf("%s %s", e.RefKind, entrySummary(e.Member().Target()))
	case classfile.KindMethodType:
		return e.Descriptor().Target().Utf8()
	case classfile.KindInvokeDynamic:
		nat := e.NameAndType().Target()
		return fmt.Sprintf("bootstrap #%d %s:%s",
			e.BootstrapIndex,
			nat.Name().Target().Utf8(),
			nat.Descriptor().Target().Utf8())
	default:
		return ""
	}
}
