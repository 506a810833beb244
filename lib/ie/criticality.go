// Package ie implements the extension and protocol-IE containers shared by
// every XnAP message: id/criticality/value triples whose values are open
// types resolved through a catalog.
package ie

import (
	"encoding/json"

	"github.com/thebagchi/xnap-go/lib/per"
)

// Criticality ::= ENUMERATED { reject, ignore, notify }
type Criticality uint8

const (
	Reject Criticality = iota
	Ignore
	Notify
)

var criticality = per.Enumerated{
	Name: "Criticality",
	Root: []string{"reject", "ignore", "notify"},
}

func (c Criticality) Encode(e *per.Encoder) error {
	return criticality.Encode(e, uint64(c))
}

func (c *Criticality) Decode(d *per.Decoder) error {
	value, err := criticality.Decode(d)
	if err != nil {
		return err
	}
	*c = Criticality(value)
	return nil
}

func (c Criticality) String() string {
	return criticality.String(uint64(c))
}

func (c Criticality) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Presence ::= ENUMERATED { optional, conditional, mandatory }
type Presence uint8

const (
	Optional Presence = iota
	Conditional
	Mandatory
)

func (p Presence) String() string {
	switch p {
	case Optional:
		return "optional"
	case Conditional:
		return "conditional"
	case Mandatory:
		return "mandatory"
	}
	return "unknown"
}

// TypeOfError ::= ENUMERATED { not-understood, missing, ... }
type TypeOfError uint8

const (
	NotUnderstood TypeOfError = iota
	Missing
)

var typeOfError = per.Enumerated{
	Name:       "TypeOfError",
	Root:       []string{"not-understood", "missing"},
	Extensible: true,
}

func (t TypeOfError) Encode(e *per.Encoder) error {
	return typeOfError.Encode(e, uint64(t))
}

func (t *TypeOfError) Decode(d *per.Decoder) error {
	value, err := typeOfError.Decode(d)
	if err != nil {
		return err
	}
	*t = TypeOfError(value)
	return nil
}

func (t TypeOfError) String() string {
	return typeOfError.String(uint64(t))
}

func (t TypeOfError) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
