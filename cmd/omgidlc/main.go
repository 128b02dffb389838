// Command omgidlc is the OMG IDL / ROS 2 IDL schema compiler.
//
// Usage:
//
//	omgidlc validate <idl-file>...
//	omgidlc describe [options] <idl-file>
//	omgidlc roundtrip [options] <idl-file> <cdr-file>
//
// Validate Command:
//
//	Parse and resolve one or more IDL files, reporting every syntax or
//	resolution error found. Exits non-zero if any file fails.
//
// Describe Command:
//
//	Flatten an IDL file's definitions and print each one's fields with
//	their wire type, complex/array/constant markers, and a human-readable
//	title-cased label.
//
//	Options:
//	  -ros2idl          Treat the input as a ros2idl document (strip
//	                     embedded-type headers before parsing)
//
// Roundtrip Command:
//
//	Decode a raw CDR message against a root struct, re-encode it, and
//	report whether the re-encoded bytes are identical to the input —
//	a diagnostic for whether the codec's plan for that type is lossless.
//
//	Options:
//	  -root string      Root struct name to decode as (required)
//	  -encapsulation string
//	                     Encapsulation kind: CDR_LE, CDR_BE, CDR2_LE,
//	                     CDR2_BE, PL_CDR2_LE, PL_CDR2_BE,
//	                     DELIMITED_CDR2_LE, DELIMITED_CDR2_BE,
//	                     RTPS_CDR2_LE, RTPS_CDR2_BE (default "CDR_LE")
//	  -ros2idl          Treat the input as a ros2idl document
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/foxglove/go-omgidl/pkg/cdrcodec"
	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/msgdef"
	"github.com/foxglove/go-omgidl/pkg/resolver"
	"github.com/foxglove/go-omgidl/pkg/ros2idl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate", "val":
		cmdValidate(os.Args[2:])
	case "describe", "desc":
		cmdDescribe(os.Args[2:])
	case "roundtrip", "rt":
		cmdRoundtrip(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`omgidlc - OMG IDL / ROS 2 IDL schema compiler

Usage:
  omgidlc <command> [options] <files>...

Commands:
  validate    Parse and resolve schema files, reporting errors
  describe    Print a schema file's flattened field layout
  roundtrip   Decode then re-encode a CDR message, checking for byte equality
  help        Print this help message

Run 'omgidlc <command> -h' for command-specific help.`)
}

// titleCaser renders the last segment of a record name (underscores
// turned into spaces) as a human-readable label for describe's output.
var titleCaser = cases.Title(language.English)

func displayLabel(name string) string {
	spaced := strings.ReplaceAll(name, "_", " ")
	return titleCaser.String(spaced)
}

func readSchema(path string, asRos2idl bool) (*idl.Schema, *resolver.Index, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if asRos2idl {
		return ros2idl.ParseAndResolve(string(content), path)
	}
	schema, errs := idl.Parse(string(content), path)
	if errs != nil {
		return nil, nil, errs
	}
	idx, err := resolver.Resolve(schema)
	if err != nil {
		return nil, nil, err
	}
	return schema, idx, nil
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	asRos2idl := fs.Bool("ros2idl", false, "Treat input as a ros2idl document")
	fs.Usage = func() {
		fmt.Println(`Usage: omgidlc validate [options] <idl-file>...

Parse and resolve IDL files without producing any output on success.

Options:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, path := range fs.Args() {
		if _, _, err := readSchema(path, *asRos2idl); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			hasErrors = true
			continue
		}
		fmt.Printf("Valid: %s\n", path)
	}
	if hasErrors {
		os.Exit(1)
	}
}

func cmdDescribe(args []string) {
	fs := flag.NewFlagSet("describe", flag.ExitOnError)
	asRos2idl := fs.Bool("ros2idl", false, "Treat input as a ros2idl document")
	fs.Usage = func() {
		fmt.Println(`Usage: omgidlc describe [options] <idl-file>

Print every flattened struct/union/enum/module-constant record in
<idl-file> with its field layout.

Options:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one input file required")
		fs.Usage()
		os.Exit(1)
	}

	schema, idx, err := readSchema(fs.Arg(0), *asRos2idl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	defs, err := msgdef.Export(schema, idx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error flattening schema: %v\n", err)
		os.Exit(1)
	}

	for _, def := range defs {
		fmt.Printf("%s  (%s)\n", def.Name, displayLabel(lastSegment(def.Name)))
		for _, f := range def.Definitions {
			fmt.Printf("  %-20s %-16s %s\n", f.Name, f.Type, fieldMarkers(f))
		}
	}
}

func lastSegment(name string) string {
	idxSep := strings.LastIndexByte(name, '/')
	if idxSep < 0 {
		return name
	}
	return name[idxSep+1:]
}

func fieldMarkers(f *msgdef.MessageDefinitionField) string {
	var marks []string
	if f.IsConstant {
		marks = append(marks, fmt.Sprintf("const=%s", f.ValueText))
	}
	if f.IsComplex {
		marks = append(marks, "complex")
	}
	if f.EnumType != "" {
		marks = append(marks, fmt.Sprintf("enum=%s", f.EnumType))
	}
	if f.IsArray {
		switch {
		case f.ArrayLength != nil:
			marks = append(marks, fmt.Sprintf("array[%d]", *f.ArrayLength))
		case f.ArrayUpperBound != nil:
			marks = append(marks, fmt.Sprintf("sequence<=%d", *f.ArrayUpperBound))
		default:
			marks = append(marks, "sequence")
		}
	}
	if f.UpperBound != nil {
		marks = append(marks, fmt.Sprintf("bound<=%d", *f.UpperBound))
	}
	return strings.Join(marks, " ")
}

var encapsulationKinds = map[string]cdrcodec.EncapsulationKind{
	"CDR_LE":            cdrcodec.CDR_LE,
	"CDR_BE":            cdrcodec.CDR_BE,
	"PL_CDR_LE":         cdrcodec.PL_CDR_LE,
	"PL_CDR_BE":         cdrcodec.PL_CDR_BE,
	"CDR2_LE":           cdrcodec.CDR2_LE,
	"CDR2_BE":           cdrcodec.CDR2_BE,
	"PL_CDR2_LE":        cdrcodec.PL_CDR2_LE,
	"PL_CDR2_BE":        cdrcodec.PL_CDR2_BE,
	"DELIMITED_CDR2_LE": cdrcodec.DELIMITED_CDR2_LE,
	"DELIMITED_CDR2_BE": cdrcodec.DELIMITED_CDR2_BE,
	"RTPS_CDR2_LE":      cdrcodec.RTPS_CDR2_LE,
	"RTPS_CDR2_BE":      cdrcodec.RTPS_CDR2_BE,
}

func cmdRoundtrip(args []string) {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	root := fs.String("root", "", "Root struct name to decode as (required)")
	encName := fs.String("encapsulation", "CDR_LE", "Encapsulation kind")
	asRos2idl := fs.Bool("ros2idl", false, "Treat the IDL input as a ros2idl document")
	fs.Usage = func() {
		fmt.Println(`Usage: omgidlc roundtrip [options] <idl-file> <cdr-file>

Decode <cdr-file> against the root struct named by -root, re-encode the
decoded value, and report whether the re-encoded bytes match the input
byte for byte.

Options:`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 2 || *root == "" {
		fmt.Fprintln(os.Stderr, "Error: <idl-file> and <cdr-file> are required, along with -root")
		fs.Usage()
		os.Exit(1)
	}

	kind, ok := encapsulationKinds[*encName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unrecognized encapsulation %q\n", *encName)
		os.Exit(1)
	}

	schema, idx, err := readSchema(fs.Arg(0), *asRos2idl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	opts := cdrcodec.Options{Limits: cdrcodec.DefaultLimits, EncapsulationKind: kind}
	reader, err := cdrcodec.NewReader(schema, idx, *root, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building reader: %v\n", err)
		os.Exit(1)
	}
	writer, err := cdrcodec.NewWriter(schema, idx, *root, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building writer: %v\n", err)
		os.Exit(1)
	}

	input, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", fs.Arg(1), err)
		os.Exit(1)
	}

	decoded, err := reader.ReadMessage(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding message: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Decoded %d top-level field(s)\n", decoded.Len())

	reencoded, err := writer.WriteMessage(decoded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error re-encoding message: %v\n", err)
		os.Exit(1)
	}

	if bytes.Equal(input, reencoded) {
		fmt.Println("Roundtrip OK: re-encoded bytes match the input exactly")
		return
	}
	fmt.Printf("Roundtrip MISMATCH: input is %d bytes, re-encoded is %d bytes\n", len(input), len(reencoded))
	os.Exit(1)
}
