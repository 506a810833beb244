package xnap

import (
	"github.com/pkg/errors"

	"github.com/thebagchi/xnap-go/lib/ie"
	"github.com/thebagchi/xnap-go/lib/per"
)

// ErrorIndication-IEs XNAP-PROTOCOL-IES ::= {
//	{ ID id-oldNG-RANnodeUEXnAPID  CRITICALITY ignore TYPE NG-RANnodeUEXnAPID      PRESENCE optional } |
//	{ ID id-newNG-RANnodeUEXnAPID  CRITICALITY ignore TYPE NG-RANnodeUEXnAPID      PRESENCE optional } |
//	{ ID id-Cause                  CRITICALITY ignore TYPE Cause                   PRESENCE optional } |
//	{ ID id-CriticalityDiagnostics CRITICALITY ignore TYPE CriticalityDiagnostics  PRESENCE optional },
//	...
// }
var ErrorIndicationIEs = ie.NewTable("ErrorIndication-IEs",
	ie.Entry{ID: IDOldNGRANnodeUEXnAPID, Name: "id-oldNG-RANnodeUEXnAPID", Criticality: ie.Ignore, Presence: ie.Optional, New: newNGRANnodeUEXnAPID},
	ie.Entry{ID: IDNewNGRANnodeUEXnAPID, Name: "id-newNG-RANnodeUEXnAPID", Criticality: ie.Ignore, Presence: ie.Optional, New: newNGRANnodeUEXnAPID},
	ie.Entry{ID: IDCause, Name: "id-Cause", Criticality: ie.Ignore, Presence: ie.Optional, New: newCause},
	ie.Entry{ID: IDCriticalityDiagnostics, Name: "id-CriticalityDiagnostics", Criticality: ie.Ignore, Presence: ie.Optional, New: newCriticalityDiagnostics},
)

// XnSetupFailure-IEs XNAP-PROTOCOL-IES ::= {
//	{ ID id-Cause                  CRITICALITY ignore TYPE Cause                  PRESENCE mandatory } |
//	{ ID id-TimeToWait             CRITICALITY ignore TYPE TimeToWait             PRESENCE optional  } |
//	{ ID id-CriticalityDiagnostics CRITICALITY ignore TYPE CriticalityDiagnostics PRESENCE optional  },
//	...
// }
var XnSetupFailureIEs = ie.NewTable("XnSetupFailure-IEs",
	ie.Entry{ID: IDCause, Name: "id-Cause", Criticality: ie.Ignore, Presence: ie.Mandatory, New: newCause},
	ie.Entry{ID: IDTimeToWait, Name: "id-TimeToWait", Criticality: ie.Ignore, Presence: ie.Optional, New: newTimeToWait},
	ie.Entry{ID: IDCriticalityDiagnostics, Name: "id-CriticalityDiagnostics", Criticality: ie.Ignore, Presence: ie.Optional, New: newCriticalityDiagnostics},
)

func newNGRANnodeUEXnAPID() per.Value { return new(NGRANnodeUEXnAPID) }
func newCause() per.Value { return new(Cause) }
func newTimeToWait() per.Value { return new(TimeToWait) }
func newCriticalityDiagnostics() per.Value { return new(CriticalityDiagnostics) }

// Message is a SEQUENCE { protocolIEs ProtocolIE-Container, ... } as used by
// every XnAP message.
type Message struct {
	ProtocolIEs *ie.Container          `json:"protocolIEs"`
	Additions   per.ExtensionAdditions `json:"-"`
}

func (m *Message) Encode(e *per.Encoder) error {
	if m.ProtocolIEs == nil {
		return errors.Wrap(per.ErrMalformed, "message without protocolIEs")
	}
	if err := e.EncodeSequencePreamble(true, m.Additions.Present()); err != nil {
		return err
	}
	if err := m.ProtocolIEs.Encode(e); err != nil {
		return err
	}
	if m.Additions.Present() {
		return e.EncodeExtensionAdditions(m.Additions)
	}
	return nil
}

func (m *Message) decode(d *per.Decoder, catalog ie.Catalog) error {
	extended, _, err := d.DecodeSequencePreamble(true, 0)
	if err != nil {
		return err
	}
	m.ProtocolIEs = ie.NewIEContainer(catalog)
	if err := m.ProtocolIEs.Decode(d); err != nil {
		return err
	}
	if extended {
		m.Additions, err = d.DecodeExtensionAdditions()
	}
	return err
}

// get returns the value of id, if the message holds one.
func (m *Message) get(id uint32) (per.Value, bool) {
	if m.ProtocolIEs == nil {
		return nil, false
	}
	return m.ProtocolIEs.Get(id)
}

// Cause returns the id-Cause IE.
func (m *Message) Cause() (*Cause, bool) {
	value, ok := m.get(IDCause)
	if !ok {
		return nil, false
	}
	cause, ok := value.(*Cause)
	return cause, ok
}

// CriticalityDiagnostics returns the id-CriticalityDiagnostics IE.
func (m *Message) CriticalityDiagnostics() (*CriticalityDiagnostics, bool) {
	value, ok := m.get(IDCriticalityDiagnostics)
	if !ok {
		return nil, false
	}
	diagnostics, ok := value.(*CriticalityDiagnostics)
	return diagnostics, ok
}

// ErrorIndication ::= SEQUENCE {
//	protocolIEs ProtocolIE-Container { {ErrorIndication-IEs} },
//	...
// }
type ErrorIndication struct {
	Message
}

func NewErrorIndication() *ErrorIndication {
	return &ErrorIndication{Message{ProtocolIEs: ie.NewIEContainer(ErrorIndicationIEs)}}
}

func (m *ErrorIndication) Decode(d *per.Decoder) error {
	return m.decode(d, ErrorIndicationIEs)
}

// XnSetupFailure ::= SEQUENCE {
//	protocolIEs ProtocolIE-Container { {XnSetupFailure-IEs} },
//	...
// }
type XnSetupFailure struct {
	Message
}

func NewXnSetupFailure() *XnSetupFailure {
	return &XnSetupFailure{Message{ProtocolIEs: ie.NewIEContainer(XnSetupFailureIEs)}}
}

func (m *XnSetupFailure) Decode(d *per.Decoder) error {
	return m.decode(d, XnSetupFailureIEs)
}

// TimeToWait returns the id-TimeToWait IE.
func (m *XnSetupFailure) TimeToWait() (TimeToWait, bool) {
	value, ok := m.get(IDTimeToWait)
	if !ok {
		return 0, false
	}
	wait, ok := value.(*TimeToWait)
	if !ok {
		return 0, false
	}
	return *wait, true
}
