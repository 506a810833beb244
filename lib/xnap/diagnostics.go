package xnap

import (
	"encoding/json"

	"github.com/thebagchi/xnap-go/lib/ie"
	"github.com/thebagchi/xnap-go/lib/per"
)

// TriggeringMessage ::= ENUMERATED { initiating-message, successful-outcome, unsuccessful-outcome }
type TriggeringMessage uint64

const (
	TriggeringMessageInitiating TriggeringMessage = iota
	TriggeringMessageSuccessful
	TriggeringMessageUnsuccessful
)

var triggeringMessage = per.Enumerated{
	Name: "TriggeringMessage",
	Root: []string{"initiating-message", "successful-outcome", "unsuccessful-outcome"},
}

func (t TriggeringMessage) Encode(e *per.Encoder) error {
	return triggeringMessage.Encode(e, uint64(t))
}

func (t *TriggeringMessage) Decode(d *per.Decoder) error {
	value, err := triggeringMessage.Decode(d)
	if err != nil {
		return err
	}
	*t = TriggeringMessage(value)
	return nil
}

func (t TriggeringMessage) String() string {
	return triggeringMessage.String(uint64(t))
}

func (t TriggeringMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// CriticalityDiagnostics ::= SEQUENCE {
//	procedureCode             ProcedureCode          OPTIONAL,
//	triggeringMessage         TriggeringMessage      OPTIONAL,
//	procedureCriticality      Criticality            OPTIONAL,
//	iEsCriticalityDiagnostics CriticalityDiagnostics-IE-List OPTIONAL,
//	iE-Extensions             ProtocolExtensionContainer { {CriticalityDiagnostics-ExtIEs} } OPTIONAL,
//	...
// }
type CriticalityDiagnostics struct {
	ProcedureCode        *uint8                         `json:"procedureCode,omitempty"`
	TriggeringMessage    *TriggeringMessage             `json:"triggeringMessage,omitempty"`
	ProcedureCriticality *ie.Criticality                `json:"procedureCriticality,omitempty"`
	IEsDiagnostics       []CriticalityDiagnosticsIEItem `json:"iEsCriticalityDiagnostics,omitempty"`
	IEExtensions         *ie.Container                  `json:"iE-Extensions,omitempty"`
	Additions            per.ExtensionAdditions         `json:"-"`
}

// NewCriticalityDiagnostics builds the diagnostics IE reporting problems
// found while decoding a message of procedure code.
func NewCriticalityDiagnostics(code uint8, trigger TriggeringMessage,
	criticality ie.Criticality, diagnostics ie.Diagnostics) *CriticalityDiagnostics {
	c := &CriticalityDiagnostics{
		ProcedureCode:        per.Ref(code),
		TriggeringMessage:    per.Ref(trigger),
		ProcedureCriticality: per.Ref(criticality),
	}
	for _, item := range diagnostics {
		if len(c.IEsDiagnostics) == MAX_NR_OF_ERRORS {
			break
		}
		c.IEsDiagnostics = append(c.IEsDiagnostics, CriticalityDiagnosticsIEItem{
			IECriticality: item.Criticality,
			IEID:          item.ID,
			TypeOfError:   item.TypeOfError,
		})
	}
	return c
}

func (c *CriticalityDiagnostics) Encode(e *per.Encoder) error {
	if err := e.EncodeSequencePreamble(true, c.Additions.Present(),
		c.ProcedureCode != nil,
		c.TriggeringMessage != nil,
		c.ProcedureCriticality != nil,
		c.IEsDiagnostics != nil,
		c.IEExtensions != nil,
	); err != nil {
		return err
	}
	if c.ProcedureCode != nil {
		if err := e.EncodeConstrainedWholeNumber(0, 255, int64(*c.ProcedureCode)); err != nil {
			return err
		}
	}
	if c.TriggeringMessage != nil {
		if err := c.TriggeringMessage.Encode(e); err != nil {
			return err
		}
	}
	if c.ProcedureCriticality != nil {
		if err := c.ProcedureCriticality.Encode(e); err != nil {
			return err
		}
	}
	if c.IEsDiagnostics != nil {
		err := per.EncodeSequenceOf(e, c.IEsDiagnostics, per.Ref[uint64](1), per.Ref[uint64](MAX_NR_OF_ERRORS), false,
			func(e *per.Encoder, item CriticalityDiagnosticsIEItem) error {
				return item.Encode(e)
			})
		if err != nil {
			return err
		}
	}
	return encodeTail(e, c.IEExtensions, c.Additions)
}

func (c *CriticalityDiagnostics) Decode(d *per.Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 5)
	if err != nil {
		return err
	}
	if optionals[0] {
		code, err := d.DecodeConstrainedWholeNumber(0, 255)
		if err != nil {
			return err
		}
		c.ProcedureCode = per.Ref(uint8(code))
	}
	if optionals[1] {
		c.TriggeringMessage = new(TriggeringMessage)
		if err := c.TriggeringMessage.Decode(d); err != nil {
			return err
		}
	}
	if optionals[2] {
		c.ProcedureCriticality = new(ie.Criticality)
		if err := c.ProcedureCriticality.Decode(d); err != nil {
			return err
		}
	}
	if optionals[3] {
		c.IEsDiagnostics, err = per.DecodeSequenceOf(d, per.Ref[uint64](1), per.Ref[uint64](MAX_NR_OF_ERRORS), false,
			func(d *per.Decoder) (CriticalityDiagnosticsIEItem, error) {
				var item CriticalityDiagnosticsIEItem
				err := item.Decode(d)
				return item, err
			})
		if err != nil {
			return err
		}
	}
	c.IEExtensions, c.Additions, err = decodeTail(d, optionals[4], extended, CriticalityDiagnosticsExtIEs)
	return err
}

// CriticalityDiagnostics-IE-List ::= SEQUENCE (SIZE(1..maxNrOfErrors)) OF
//	SEQUENCE {
//		iECriticality Criticality,
//		iE-ID         ProtocolIE-ID,
//		typeOfError   TypeOfError,
//		iE-Extensions ProtocolExtensionContainer { {CriticalityDiagnostics-IE-List-ExtIEs} } OPTIONAL,
//		...
//	}
type CriticalityDiagnosticsIEItem struct {
	IECriticality ie.Criticality         `json:"iECriticality"`
	IEID          uint32                 `json:"iE-ID"`
	TypeOfError   ie.TypeOfError         `json:"typeOfError"`
	IEExtensions  *ie.Container          `json:"iE-Extensions,omitempty"`
	Additions     per.ExtensionAdditions `json:"-"`
}

func (i *CriticalityDiagnosticsIEItem) Encode(e *per.Encoder) error {
	if err := e.EncodeSequencePreamble(true, i.Additions.Present(), i.IEExtensions != nil); err != nil {
		return err
	}
	if err := i.IECriticality.Encode(e); err != nil {
		return err
	}
	if err := e.EncodeConstrainedWholeNumber(0, ie.MAX_PROTOCOL_IE_ID, int64(i.IEID)); err != nil {
		return err
	}
	if err := i.TypeOfError.Encode(e); err != nil {
		return err
	}
	return encodeTail(e, i.IEExtensions, i.Additions)
}

func (i *CriticalityDiagnosticsIEItem) Decode(d *per.Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 1)
	if err != nil {
		return err
	}
	if err := i.IECriticality.Decode(d); err != nil {
		return err
	}
	id, err := d.DecodeConstrainedWholeNumber(0, ie.MAX_PROTOCOL_IE_ID)
	if err != nil {
		return err
	}
	i.IEID = uint32(id)
	if err := i.TypeOfError.Decode(d); err != nil {
		return err
	}
	i.IEExtensions, i.Additions, err = decodeTail(d, optionals[0], extended, CriticalityDiagnosticsIEListExtIEs)
	return err
}
