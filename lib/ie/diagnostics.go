package ie

import (
	"fmt"
	"strings"

	"github.com/thebagchi/xnap-go/lib/per"
)

// DiagnosticItem reports one IE that was not understood or was missing.
type DiagnosticItem struct {
	Criticality Criticality `json:"criticality"`
	ID          uint32      `json:"id"`
	TypeOfError TypeOfError `json:"typeOfError"`
	Container   string      `json:"container,omitempty"`
}

func (i DiagnosticItem) issue() per.Issue {
	return per.Issue{
		ID:          i.ID,
		Criticality: uint8(i.Criticality),
		TypeOfError: uint8(i.TypeOfError),
		Container:   i.Container,
	}
}

// Diagnostics is the list of IE problems found while decoding a message, in
// the shape of the CriticalityDiagnostics-IE-List.
type Diagnostics []DiagnosticItem

// FromIssues converts the issues recorded by a decoder.
func FromIssues(issues []per.Issue) Diagnostics {
	if len(issues) == 0 {
		return nil
	}
	items := make(Diagnostics, 0, len(issues))
	for _, issue := range issues {
		items = append(items, DiagnosticItem{
			Criticality: Criticality(issue.Criticality),
			ID:          issue.ID,
			TypeOfError: TypeOfError(issue.TypeOfError),
			Container:   issue.Container,
		})
	}
	return items
}

func (d Diagnostics) String() string {
	parts := make([]string, 0, len(d))
	for _, item := range d {
		parts = append(parts, fmt.Sprintf("%s:%d(%s,%s)", item.Container, item.ID, item.Criticality, item.TypeOfError))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// CriticalError is returned when a container cannot be accepted: an unknown
// IE with criticality reject, or a missing mandatory IE with criticality
// reject. It unwraps to per.ErrUnknownCriticalIE or per.ErrMalformed.
type CriticalError struct {
	Kind        error
	Container   string
	ID          uint32
	Criticality Criticality
	Diagnostics Diagnostics
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("%s: id %d (%s): %v", e.Container, e.ID, e.Criticality, e.Kind)
}

func (e *CriticalError) Unwrap() error {
	return e.Kind
}
