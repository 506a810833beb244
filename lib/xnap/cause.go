package xnap

import (
	"encoding/json"

	"github.com/thebagchi/xnap-go/lib/per"
)

// Cause ::= CHOICE {
//	radioNetwork     CauseRadioNetworkLayer,
//	transport        CauseTransportLayer,
//	protocol         CauseProtocol,
//	misc             CauseMisc,
//	choice-extension ProtocolIE-SingleContainer { {Cause-ExtIEs} }
// }
type Cause struct {
	per.Choice
}

const (
	CauseRadioNetwork = iota
	CauseTransport
	CauseProtocolError
	CauseMiscellaneous
	CauseExtension
	causeRoot
)

// NewCause selects one of the enumerated alternatives.
func NewCause(index int, value uint64) Cause {
	var v any
	switch index {
	case CauseRadioNetwork:
		v = CauseRadioNetworkLayer(value)
	case CauseTransport:
		v = CauseTransportLayer(value)
	case CauseProtocolError:
		v = CauseProtocol(value)
	case CauseMiscellaneous:
		v = CauseMisc(value)
	}
	return Cause{per.NewChoice(index, v)}
}

func (c *Cause) RadioNetwork() (CauseRadioNetworkLayer, error) {
	return per.Alternative[CauseRadioNetworkLayer](&c.Choice, CauseRadioNetwork)
}

func (c *Cause) Transport() (CauseTransportLayer, error) {
	return per.Alternative[CauseTransportLayer](&c.Choice, CauseTransport)
}

func (c *Cause) Protocol() (CauseProtocol, error) {
	return per.Alternative[CauseProtocol](&c.Choice, CauseProtocolError)
}

func (c *Cause) Misc() (CauseMisc, error) {
	return per.Alternative[CauseMisc](&c.Choice, CauseMiscellaneous)
}

func (c *Cause) Encode(e *per.Encoder) error {
	if err := e.EncodeChoiceIndex(c.Type(), causeRoot, false); err != nil {
		return err
	}
	if c.Type() == CauseExtension {
		return encodeSingle(&c.Choice, CauseExtension, e)
	}
	value, err := per.Alternative[interface{ Encode(*per.Encoder) error }](&c.Choice, c.Type())
	if err != nil {
		return err
	}
	return value.Encode(e)
}

func (c *Cause) Decode(d *per.Decoder) error {
	index, _, err := d.DecodeChoiceIndex(causeRoot, false)
	if err != nil {
		return err
	}
	var value per.Value
	switch index {
	case CauseRadioNetwork:
		value = new(CauseRadioNetworkLayer)
	case CauseTransport:
		value = new(CauseTransportLayer)
	case CauseProtocolError:
		value = new(CauseProtocol)
	case CauseMiscellaneous:
		value = new(CauseMisc)
	default:
		return decodeSingle(&c.Choice, index, d, CauseExtIEs)
	}
	if err := value.Decode(d); err != nil {
		return err
	}
	switch v := value.(type) {
	case *CauseRadioNetworkLayer:
		c.Set(index, *v)
	case *CauseTransportLayer:
		c.Set(index, *v)
	case *CauseProtocol:
		c.Set(index, *v)
	case *CauseMisc:
		c.Set(index, *v)
	}
	return nil
}

// CauseRadioNetworkLayer ::= ENUMERATED { cell-not-available, ..., unspecified, ... }
type CauseRadioNetworkLayer uint64

var causeRadioNetworkLayer = per.Enumerated{
	Name: "CauseRadioNetworkLayer",
	Root: []string{
		"cell-not-available",
		"handover-desirable-for-radio-reasons",
		"handover-target-not-allowed",
		"invalid-AMF-Set-ID",
		"no-radio-resources-available-in-target-cell",
		"partial-handover",
		"reduce-load-in-serving-cell",
		"resource-optimisation-handover",
		"time-critical-handover",
		"tXnRELOCoverall-expiry",
		"tXnRELOCprep-expiry",
		"unknown-GUAMI-ID",
		"unknown-local-NG-RAN-node-UE-XnAP-ID",
		"inconsistent-remote-NG-RAN-node-UE-XnAP-ID",
		"encryption-and-or-integrity-protection-algorithms-not-supported",
		"not-used-causes-value-1",
		"multiple-PDU-session-ID-instances",
		"unknown-PDU-session-ID",
		"unknown-QoS-Flow-ID",
		"multiple-QoS-Flow-ID-instances",
		"switch-off-ongoing",
		"not-supported-5QI-value",
		"tXnDCoverall-expiry",
		"tXnDCprep-expiry",
		"action-desirable-for-radio-reasons",
		"reduce-load",
		"resource-optimisation",
		"time-critical-action",
		"target-not-allowed",
		"no-radio-resources-available",
		"invalid-QoS-combination",
		"encryption-algorithms-not-supported",
		"procedure-cancelled",
		"rRM-purpose",
		"improve-user-bit-rate",
		"user-inactivity",
		"radio-connection-with-UE-lost",
		"failure-in-the-radio-interface-procedure",
		"bearer-option-not-supported",
		"up-integrity-protection-not-possible",
		"up-confidentiality-protection-not-possible",
		"resources-not-available-for-the-slice-s",
		"ue-max-IP-data-rate-reason",
		"cP-integrity-protection-failure",
		"uP-integrity-protection-failure",
		"slice-not-supported-by-NG-RAN",
		"mN-Mobility",
		"sN-Mobility",
		"count-reaches-max-value",
		"unknown-old-NG-RAN-node-UE-XnAP-ID",
		"pDCP-Overload",
		"drb-id-not-available",
		"unspecified",
	},
	Additions: []string{
		"ue-context-id-not-known",
		"non-relocation-of-context",
		"cho-cpc-resources-tobechanged",
	},
	Extensible: true,
}

// CauseRadioNetworkLayerUnspecified is the last root value.
const CauseRadioNetworkLayerUnspecified CauseRadioNetworkLayer = 52

func (c CauseRadioNetworkLayer) Encode(e *per.Encoder) error {
	return causeRadioNetworkLayer.Encode(e, uint64(c))
}

func (c *CauseRadioNetworkLayer) Decode(d *per.Decoder) error {
	value, err := causeRadioNetworkLayer.Decode(d)
	if err != nil {
		return err
	}
	*c = CauseRadioNetworkLayer(value)
	return nil
}

func (c CauseRadioNetworkLayer) String() string {
	return causeRadioNetworkLayer.String(uint64(c))
}

func (c CauseRadioNetworkLayer) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// CauseTransportLayer ::= ENUMERATED { transport-resource-unavailable, unspecified, ... }
type CauseTransportLayer uint64

const (
	CauseTransportLayerTransportResourceUnavailable CauseTransportLayer = iota
	CauseTransportLayerUnspecified
)

var causeTransportLayer = per.Enumerated{
	Name:       "CauseTransportLayer",
	Root:       []string{"transport-resource-unavailable", "unspecified"},
	Extensible: true,
}

func (c CauseTransportLayer) Encode(e *per.Encoder) error {
	return causeTransportLayer.Encode(e, uint64(c))
}

func (c *CauseTransportLayer) Decode(d *per.Decoder) error {
	value, err := causeTransportLayer.Decode(d)
	if err != nil {
		return err
	}
	*c = CauseTransportLayer(value)
	return nil
}

func (c CauseTransportLayer) String() string {
	return causeTransportLayer.String(uint64(c))
}

func (c CauseTransportLayer) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// CauseProtocol ::= ENUMERATED { transfer-syntax-error, ..., unspecified, ... }
type CauseProtocol uint64

const (
	CauseProtocolTransferSyntaxError CauseProtocol = iota
	CauseProtocolAbstractSyntaxErrorReject
	CauseProtocolAbstractSyntaxErrorIgnoreAndNotify
	CauseProtocolMessageNotCompatibleWithReceiverState
	CauseProtocolSemanticError
	CauseProtocolAbstractSyntaxErrorFalselyConstructedMessage
	CauseProtocolUnspecified
)

var causeProtocol = per.Enumerated{
	Name: "CauseProtocol",
	Root: []string{
		"transfer-syntax-error",
		"abstract-syntax-error-reject",
		"abstract-syntax-error-ignore-and-notify",
		"message-not-compatible-with-receiver-state",
		"semantic-error",
		"abstract-syntax-error-falsely-constructed-message",
		"unspecified",
	},
	Extensible: true,
}

func (c CauseProtocol) Encode(e *per.Encoder) error {
	return causeProtocol.Encode(e, uint64(c))
}

func (c *CauseProtocol) Decode(d *per.Decoder) error {
	value, err := causeProtocol.Decode(d)
	if err != nil {
		return err
	}
	*c = CauseProtocol(value)
	return nil
}

func (c CauseProtocol) String() string {
	return causeProtocol.String(uint64(c))
}

func (c CauseProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// CauseMisc ::= ENUMERATED { control-processing-overload, ..., unspecified, ... }
type CauseMisc uint64

const (
	CauseMiscControlProcessingOverload CauseMisc = iota
	CauseMiscHardwareFailure
	CauseMiscOAndMIntervention
	CauseMiscNotEnoughUserPlaneProcessingResources
	CauseMiscUnspecified
)

var causeMisc = per.Enumerated{
	Name: "CauseMisc",
	Root: []string{
		"control-processing-overload",
		"hardware-failure",
		"o-and-M-intervention",
		"not-enough-user-plane-processing-resources",
		"unspecified",
	},
	Extensible: true,
}

func (c CauseMisc) Encode(e *per.Encoder) error {
	return causeMisc.Encode(e, uint64(c))
}

func (c *CauseMisc) Decode(d *per.Decoder) error {
	value, err := causeMisc.Decode(d)
	if err != nil {
		return err
	}
	*c = CauseMisc(value)
	return nil
}

func (c CauseMisc) String() string {
	return causeMisc.String(uint64(c))
}

func (c CauseMisc) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}
