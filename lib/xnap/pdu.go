package xnap

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/thebagchi/xnap-go/lib/ie"
	"github.com/thebagchi/xnap-go/lib/per"
)

// Procedure describes an elementary procedure and the messages it carries.
// A nil constructor leaves the corresponding message undecoded.
type Procedure struct {
	Code         uint8
	Name         string
	Criticality  ie.Criticality
	Initiating   func() per.Value
	Successful   func() per.Value
	Unsuccessful func() per.Value
}

var procedures = map[uint8]Procedure{
	ProcedureXnSetup: {
		Code:         ProcedureXnSetup,
		Name:         "xnSetup",
		Criticality:  ie.Reject,
		Unsuccessful: func() per.Value { return NewXnSetupFailure() },
	},
	ProcedureErrorIndication: {
		Code:        ProcedureErrorIndication,
		Name:        "errorIndication",
		Criticality: ie.Ignore,
		Initiating:  func() per.Value { return NewErrorIndication() },
	},
}

// LookupProcedure returns the procedure of code.
func LookupProcedure(code uint8) (Procedure, bool) {
	procedure, ok := procedures[code]
	return procedure, ok
}

func (p Procedure) constructor(index int) func() per.Value {
	switch index {
	case PDUInitiatingMessage:
		return p.Initiating
	case PDUSuccessfulOutcome:
		return p.Successful
	case PDUUnsuccessfulOutcome:
		return p.Unsuccessful
	}
	return nil
}

// XnAP-PDU ::= CHOICE {
//	initiatingMessage   InitiatingMessage,
//	successfulOutcome   SuccessfulOutcome,
//	unsuccessfulOutcome UnsuccessfulOutcome,
//	...
// }
type XnAPPDU struct {
	per.Choice
}

const (
	PDUInitiatingMessage = iota
	PDUSuccessfulOutcome
	PDUUnsuccessfulOutcome
	pduRoot
)

// NewPDU wraps value as the message of procedure code. The criticality is
// the procedure's.
func NewPDU(index int, code uint8, value per.Value) XnAPPDU {
	criticality := ie.Reject
	if procedure, ok := LookupProcedure(code); ok {
		criticality = procedure.Criticality
	}
	return XnAPPDU{per.NewChoice(index, &ProcedureMessage{
		ProcedureCode: code,
		Criticality:   criticality,
		Value:         value,
	})}
}

// Message returns the message of a root alternative.
func (p *XnAPPDU) Message() (*ProcedureMessage, error) {
	return per.Alternative[*ProcedureMessage](&p.Choice, p.Type())
}

func (p *XnAPPDU) Encode(e *per.Encoder) error {
	if err := e.EncodeChoiceIndex(p.Type(), pduRoot, true); err != nil {
		return err
	}
	if p.Type() >= pduRoot {
		value, err := per.Alternative[per.OpenType](&p.Choice, p.Type())
		if err != nil {
			return err
		}
		return e.EncodeOpenType(&value)
	}
	message, err := p.Message()
	if err != nil {
		return err
	}
	return message.Encode(e)
}

func (p *XnAPPDU) Decode(d *per.Decoder) error {
	index, extended, err := d.DecodeChoiceIndex(pduRoot, true)
	if err != nil {
		return err
	}
	if extended {
		data, err := d.DecodeOpenType()
		if err != nil {
			return err
		}
		p.Set(index, per.OpenType(data))
		return nil
	}
	message := &ProcedureMessage{}
	if err := message.decode(d, index); err != nil {
		return err
	}
	p.Set(index, message)
	return nil
}

// InitiatingMessage, SuccessfulOutcome and UnsuccessfulOutcome share
//
//	SEQUENCE {
//		procedureCode XNAP-ELEMENTARY-PROCEDURE.&procedureCode ({XNAP-ELEMENTARY-PROCEDURES}),
//		criticality   XNAP-ELEMENTARY-PROCEDURE.&criticality   ({XNAP-ELEMENTARY-PROCEDURES}{@procedureCode}),
//		value         XNAP-ELEMENTARY-PROCEDURE.&Value         ({XNAP-ELEMENTARY-PROCEDURES}{@procedureCode})
//	}
type ProcedureMessage struct {
	ProcedureCode uint8          `json:"procedureCode"`
	Criticality   ie.Criticality `json:"criticality"`
	Value         per.Value      `json:"value"`
}

func (m *ProcedureMessage) Encode(e *per.Encoder) error {
	if m.Value == nil {
		return errors.Wrapf(per.ErrMalformed, "procedure %d without value", m.ProcedureCode)
	}
	if err := e.EncodeConstrainedWholeNumber(0, 255, int64(m.ProcedureCode)); err != nil {
		return err
	}
	if err := m.Criticality.Encode(e); err != nil {
		return err
	}
	return e.EncodeOpenType(m.Value)
}

func (m *ProcedureMessage) decode(d *per.Decoder, index int) error {
	code, err := d.DecodeConstrainedWholeNumber(0, 255)
	if err != nil {
		return err
	}
	m.ProcedureCode = uint8(code)
	if err := m.Criticality.Decode(d); err != nil {
		return err
	}
	data, err := d.DecodeOpenType()
	if err != nil {
		return err
	}

	procedure, known := LookupProcedure(m.ProcedureCode)
	if !known && m.Criticality == ie.Reject {
		return &ie.CriticalError{
			Kind:        per.ErrUnknownCriticalIE,
			Container:   "XnAP-PDU",
			ID:          uint32(m.ProcedureCode),
			Criticality: m.Criticality,
		}
	}
	constructor := procedure.constructor(index)
	if constructor == nil {
		d.Logger().WithFields(logrus.Fields{
			"procedureCode": m.ProcedureCode,
			"criticality":   m.Criticality,
		}).Debug("keeping undecoded procedure message")
		raw := per.OpenType(data)
		m.Value = &raw
		return nil
	}
	m.Value = constructor()
	if err := d.DecodeComplete(data, m.Value); err != nil {
		return errors.Wrapf(err, "procedure %s", procedure.Name)
	}
	return nil
}
