package xnap

import (
	"encoding/json"
	"sort"

	"github.com/thebagchi/xnap-go/lib/per"
)

// Types maps the names accepted by the command line tool to constructors of
// top level values.
var Types = map[string]func() per.Value{
	"pdu":                     func() per.Value { return new(XnAPPDU) },
	"cause":                   func() per.Value { return new(Cause) },
	"global-gnb-id":           func() per.Value { return new(GlobalgNBID) },
	"global-ng-ran-node-id":   func() per.Value { return new(GlobalNGRANNodeID) },
	"criticality-diagnostics": func() per.Value { return new(CriticalityDiagnostics) },
}

// TypeNames returns the keys of Types, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(Types))
	for name := range Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dump renders v as indented JSON for debugging. The layout is not stable.
func Dump(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
