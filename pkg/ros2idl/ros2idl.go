// Package ros2idl provides a thin convenience wrapper over pkg/idl and
// pkg/resolver for the ros2idl wire format: an OMG IDL document
// optionally preceded by one or more embedded-type headers of the form
//
//	================================================================================
//	IDL: package_name/msg/TypeName
//
// which ROS 2 tooling (rosbag2, rosidl) prepends when concatenating a
// message's IDL with the IDL of the types it depends on. Schema and
// Index, once built, are ordinary pkg/idl and pkg/resolver values;
// ros2idl contributes only the header-stripping step.
package ros2idl

import (
	"regexp"

	"github.com/foxglove/go-omgidl/pkg/idl"
	"github.com/foxglove/go-omgidl/pkg/resolver"
)

// header matches one embedded-type marker line pair, as emitted by
// rosidl's IDL generator ahead of each type's definition when multiple
// types are concatenated into a single ros2idl message definition
// string.
var header = regexp.MustCompile(`={80}\nIDL: [a-zA-Z][\w]*(?:/[a-zA-Z][\w]*)*`)

// StripHeaders removes every ros2idl embedded-type header from src,
// leaving plain OMG IDL text that pkg/idl.Parse accepts directly.
func StripHeaders(src string) string {
	return header.ReplaceAllString(src, "")
}

// Parse strips ros2idl headers from src and parses the remainder as OMG
// IDL, attributing filename to diagnostics.
func Parse(src, filename string) (*idl.Schema, idl.ParseErrors) {
	return idl.Parse(StripHeaders(src), filename)
}

// ParseAndResolve strips ros2idl headers from src, parses it, and
// resolves the resulting schema in one call, for callers that have no
// use for an unresolved Schema on its own.
func ParseAndResolve(src, filename string) (*idl.Schema, *resolver.Index, error) {
	schema, errs := Parse(src, filename)
	if errs != nil {
		return nil, nil, errs
	}
	idx, err := resolver.Resolve(schema)
	if err != nil {
		return nil, nil, err
	}
	return schema, idx, nil
}
