package xnap

import (
	"encoding/asn1"

	"github.com/pkg/errors"

	"github.com/thebagchi/xnap-go/lib/ie"
	"github.com/thebagchi/xnap-go/lib/per"
)

// GNB-ID-Choice ::= CHOICE {
//	gnb-ID           BIT STRING (SIZE(22..32)),
//	choice-extension ProtocolIE-SingleContainer { {GNB-ID-Choice-ExtIEs} }
// }
type GNBIDChoice struct {
	per.Choice
}

const (
	GNBIDChoiceGNBID = iota
	GNBIDChoiceExtension
	gnbIDChoiceRoot
)

const (
	GNB_ID_MIN_BITS = 22
	GNB_ID_MAX_BITS = 32
)

// NewGNBID selects the gnb-ID alternative holding the bits least significant
// bits of id.
func NewGNBID(id uint32, bits int) GNBIDChoice {
	return GNBIDChoice{per.NewChoice(GNBIDChoiceGNBID, BitString(uint64(id), bits))}
}

// GNBID returns the gnb-ID alternative.
func (g *GNBIDChoice) GNBID() (asn1.BitString, error) {
	return per.Alternative[asn1.BitString](&g.Choice, GNBIDChoiceGNBID)
}

func (g *GNBIDChoice) Encode(e *per.Encoder) error {
	if err := e.EncodeChoiceIndex(g.Type(), gnbIDChoiceRoot, false); err != nil {
		return err
	}
	switch g.Type() {
	case GNBIDChoiceGNBID:
		value, err := g.GNBID()
		if err != nil {
			return err
		}
		return e.EncodeBitString(&value, per.Ref[uint64](GNB_ID_MIN_BITS), per.Ref[uint64](GNB_ID_MAX_BITS), false)
	default:
		return encodeSingle(&g.Choice, GNBIDChoiceExtension, e)
	}
}

func (g *GNBIDChoice) Decode(d *per.Decoder) error {
	index, _, err := d.DecodeChoiceIndex(gnbIDChoiceRoot, false)
	if err != nil {
		return err
	}
	switch index {
	case GNBIDChoiceGNBID:
		value, err := d.DecodeBitString(per.Ref[uint64](GNB_ID_MIN_BITS), per.Ref[uint64](GNB_ID_MAX_BITS), false)
		if err != nil {
			return err
		}
		g.Set(index, *value)
		return nil
	default:
		return decodeSingle(&g.Choice, index, d, GNBIDChoiceExtIEs)
	}
}

// GlobalgNB-ID ::= SEQUENCE {
//	plmn-id       PLMN-Identity,
//	gnb-id        GNB-ID-Choice,
//	iE-Extensions ProtocolExtensionContainer { {GlobalgNB-ID-ExtIEs} } OPTIONAL,
//	...
// }
type GlobalgNBID struct {
	PLMNID       PLMNIdentity           `json:"plmn-id"`
	GNBID        GNBIDChoice            `json:"gnb-id"`
	IEExtensions *ie.Container          `json:"iE-Extensions,omitempty"`
	Additions    per.ExtensionAdditions `json:"-"`
}

func (g *GlobalgNBID) Encode(e *per.Encoder) error {
	if err := e.EncodeSequencePreamble(true, g.Additions.Present(), g.IEExtensions != nil); err != nil {
		return err
	}
	if err := g.PLMNID.Encode(e); err != nil {
		return err
	}
	if err := g.GNBID.Encode(e); err != nil {
		return err
	}
	return encodeTail(e, g.IEExtensions, g.Additions)
}

func (g *GlobalgNBID) Decode(d *per.Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 1)
	if err != nil {
		return err
	}
	if err := g.PLMNID.Decode(d); err != nil {
		return err
	}
	if err := g.GNBID.Decode(d); err != nil {
		return err
	}
	g.IEExtensions, g.Additions, err = decodeTail(d, optionals[0], extended, GlobalgNBIDExtIEs)
	return err
}

// ENB-ID-Choice ::= CHOICE {
//	enb-ID-macro      BIT STRING (SIZE(20)),
//	enb-ID-shortmacro BIT STRING (SIZE(18)),
//	enb-ID-longmacro  BIT STRING (SIZE(21)),
//	choice-extension  ProtocolIE-SingleContainer { {ENB-ID-Choice-ExtIEs} }
// }
type ENBIDChoice struct {
	per.Choice
}

const (
	ENBIDChoiceMacro = iota
	ENBIDChoiceShortMacro
	ENBIDChoiceLongMacro
	ENBIDChoiceExtension
	enbIDChoiceRoot
)

var enbIDBits = [...]uint64{
	ENBIDChoiceMacro:      20,
	ENBIDChoiceShortMacro: 18,
	ENBIDChoiceLongMacro:  21,
}

// NewENBID selects one of the bit string alternatives: macro, short macro
// or long macro.
func NewENBID(index int, id uint32) (ENBIDChoice, error) {
	if index < 0 || index >= len(enbIDBits) {
		return ENBIDChoice{}, errors.Wrapf(per.ErrWrongVariant, "alternative %d is not an eNB-ID bit string", index)
	}
	return ENBIDChoice{per.NewChoice(index, BitString(uint64(id), int(enbIDBits[index])))}, nil
}

// ENBID returns the bit string of a macro, short macro or long macro
// alternative.
func (c *ENBIDChoice) ENBID(index int) (asn1.BitString, error) {
	return per.Alternative[asn1.BitString](&c.Choice, index)
}

func (c *ENBIDChoice) Encode(e *per.Encoder) error {
	if err := e.EncodeChoiceIndex(c.Type(), enbIDChoiceRoot, false); err != nil {
		return err
	}
	switch index := c.Type(); index {
	case ENBIDChoiceMacro, ENBIDChoiceShortMacro, ENBIDChoiceLongMacro:
		value, err := c.ENBID(index)
		if err != nil {
			return err
		}
		size := per.Ref(enbIDBits[index])
		return e.EncodeBitString(&value, size, size, false)
	default:
		return encodeSingle(&c.Choice, ENBIDChoiceExtension, e)
	}
}

func (c *ENBIDChoice) Decode(d *per.Decoder) error {
	index, _, err := d.DecodeChoiceIndex(enbIDChoiceRoot, false)
	if err != nil {
		return err
	}
	switch index {
	case ENBIDChoiceMacro, ENBIDChoiceShortMacro, ENBIDChoiceLongMacro:
		size := per.Ref(enbIDBits[index])
		value, err := d.DecodeBitString(size, size, false)
		if err != nil {
			return err
		}
		c.Set(index, *value)
		return nil
	default:
		return decodeSingle(&c.Choice, index, d, ENBIDChoiceExtIEs)
	}
}

// GlobalngeNB-ID ::= SEQUENCE {
//	plmn-id       PLMN-Identity,
//	enb-id        ENB-ID-Choice,
//	iE-Extensions ProtocolExtensionContainer { {GlobaleNB-ID-ExtIEs} } OPTIONAL,
//	...
// }
type GlobalngeNBID struct {
	PLMNID       PLMNIdentity           `json:"plmn-id"`
	ENBID        ENBIDChoice            `json:"enb-id"`
	IEExtensions *ie.Container          `json:"iE-Extensions,omitempty"`
	Additions    per.ExtensionAdditions `json:"-"`
}

func (g *GlobalngeNBID) Encode(e *per.Encoder) error {
	if err := e.EncodeSequencePreamble(true, g.Additions.Present(), g.IEExtensions != nil); err != nil {
		return err
	}
	if err := g.PLMNID.Encode(e); err != nil {
		return err
	}
	if err := g.ENBID.Encode(e); err != nil {
		return err
	}
	return encodeTail(e, g.IEExtensions, g.Additions)
}

func (g *GlobalngeNBID) Decode(d *per.Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 1)
	if err != nil {
		return err
	}
	if err := g.PLMNID.Decode(d); err != nil {
		return err
	}
	if err := g.ENBID.Decode(d); err != nil {
		return err
	}
	g.IEExtensions, g.Additions, err = decodeTail(d, optionals[0], extended, GlobalngeNBIDExtIEs)
	return err
}

// GlobalNG-RANNode-ID ::= CHOICE {
//	gNB              GlobalgNB-ID,
//	ng-eNB           GlobalngeNB-ID,
//	choice-extension ProtocolIE-SingleContainer { {GlobalNG-RANNode-ID-ExtIEs} }
// }
type GlobalNGRANNodeID struct {
	per.Choice
}

const (
	GlobalNGRANNodeIDGNB = iota
	GlobalNGRANNodeIDNGENB
	GlobalNGRANNodeIDExtension
	globalNGRANNodeIDRoot
)

func NewGlobalNGRANNodeIDGNB(id *GlobalgNBID) GlobalNGRANNodeID {
	return GlobalNGRANNodeID{per.NewChoice(GlobalNGRANNodeIDGNB, id)}
}

func NewGlobalNGRANNodeIDNGENB(id *GlobalngeNBID) GlobalNGRANNodeID {
	return GlobalNGRANNodeID{per.NewChoice(GlobalNGRANNodeIDNGENB, id)}
}

func (g *GlobalNGRANNodeID) GNB() (*GlobalgNBID, error) {
	return per.Alternative[*GlobalgNBID](&g.Choice, GlobalNGRANNodeIDGNB)
}

func (g *GlobalNGRANNodeID) NGENB() (*GlobalngeNBID, error) {
	return per.Alternative[*GlobalngeNBID](&g.Choice, GlobalNGRANNodeIDNGENB)
}

func (g *GlobalNGRANNodeID) Encode(e *per.Encoder) error {
	if err := e.EncodeChoiceIndex(g.Type(), globalNGRANNodeIDRoot, false); err != nil {
		return err
	}
	switch g.Type() {
	case GlobalNGRANNodeIDGNB:
		value, err := g.GNB()
		if err != nil {
			return err
		}
		return value.Encode(e)
	case GlobalNGRANNodeIDNGENB:
		value, err := g.NGENB()
		if err != nil {
			return err
		}
		return value.Encode(e)
	default:
		return encodeSingle(&g.Choice, GlobalNGRANNodeIDExtension, e)
	}
}

func (g *GlobalNGRANNodeID) Decode(d *per.Decoder) error {
	index, _, err := d.DecodeChoiceIndex(globalNGRANNodeIDRoot, false)
	if err != nil {
		return err
	}
	switch index {
	case GlobalNGRANNodeIDGNB:
		value := &GlobalgNBID{}
		if err := value.Decode(d); err != nil {
			return err
		}
		g.Set(index, value)
		return nil
	case GlobalNGRANNodeIDNGENB:
		value := &GlobalngeNBID{}
		if err := value.Decode(d); err != nil {
			return err
		}
		g.Set(index, value)
		return nil
	default:
		return decodeSingle(&g.Choice, index, d, GlobalNGRANNodeIDExtIEs)
	}
}

// encodeSingle writes the ProtocolIE-SingleContainer of a choice-extension
// alternative.
func encodeSingle(c *per.Choice, index int, e *per.Encoder) error {
	value, err := per.Alternative[*ie.SingleContainer](c, index)
	if err != nil {
		return err
	}
	if value == nil {
		return errors.Wrap(per.ErrMalformed, "empty choice-extension")
	}
	return value.Encode(e)
}

func decodeSingle(c *per.Choice, index int, d *per.Decoder, catalog ie.Catalog) error {
	value := ie.NewSingleContainer(catalog)
	if err := value.Decode(d); err != nil {
		return err
	}
	c.Set(index, value)
	return nil
}
