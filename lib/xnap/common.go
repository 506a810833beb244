package xnap

import (
	"encoding/asn1"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/thebagchi/xnap-go/lib/ie"
	"github.com/thebagchi/xnap-go/lib/per"
)

// PLMN-Identity ::= OCTET STRING (SIZE(3))
type PLMNIdentity [3]byte

func (p *PLMNIdentity) Encode(e *per.Encoder) error {
	return e.EncodeOctetString(p[:], per.Ref[uint64](3), per.Ref[uint64](3), false)
}

func (p *PLMNIdentity) Decode(d *per.Decoder) error {
	data, err := d.DecodeOctetString(per.Ref[uint64](3), per.Ref[uint64](3), false)
	if err != nil {
		return err
	}
	copy(p[:], data)
	return nil
}

func (p PLMNIdentity) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p[:]))
}

// ParsePLMNIdentity parses the six hex digits of an encoded PLMN identity.
func ParsePLMNIdentity(s string) (PLMNIdentity, error) {
	var p PLMNIdentity
	data, err := hex.DecodeString(s)
	if err != nil {
		return p, errors.Wrapf(err, "plmn %q", s)
	}
	if len(data) != len(p) {
		return p, errors.Wrapf(per.ErrLengthOutOfRange, "plmn %q is %d octets", s, len(data))
	}
	copy(p[:], data)
	return p, nil
}

// TAC ::= OCTET STRING (SIZE(3))
type TAC [3]byte

func (t *TAC) Encode(e *per.Encoder) error {
	return e.EncodeOctetString(t[:], per.Ref[uint64](3), per.Ref[uint64](3), false)
}

func (t *TAC) Decode(d *per.Decoder) error {
	data, err := d.DecodeOctetString(per.Ref[uint64](3), per.Ref[uint64](3), false)
	if err != nil {
		return err
	}
	copy(t[:], data)
	return nil
}

func (t TAC) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(t[:]))
}

// NR-Cell-Identity ::= BIT STRING (SIZE(36))
type NRCellIdentity uint64

const NR_CELL_IDENTITY_BITS = 36

func (n NRCellIdentity) Encode(e *per.Encoder) error {
	if uint64(n) >= 1<<NR_CELL_IDENTITY_BITS {
		return errors.Wrapf(per.ErrValueOutOfRange, "nr cell identity %#x", uint64(n))
	}
	value := BitString(uint64(n), NR_CELL_IDENTITY_BITS)
	return e.EncodeBitString(&value, per.Ref[uint64](NR_CELL_IDENTITY_BITS), per.Ref[uint64](NR_CELL_IDENTITY_BITS), false)
}

func (n *NRCellIdentity) Decode(d *per.Decoder) error {
	value, err := d.DecodeBitString(per.Ref[uint64](NR_CELL_IDENTITY_BITS), per.Ref[uint64](NR_CELL_IDENTITY_BITS), false)
	if err != nil {
		return err
	}
	*n = NRCellIdentity(BitStringValue(value))
	return nil
}

// BitString returns the n least significant bits of value as a bit string.
func BitString(value uint64, n int) asn1.BitString {
	data := make([]byte, (n+7)/8)
	value <<= uint(len(data)*8 - n)
	for i := len(data) - 1; i >= 0; i-- {
		data[i] = byte(value)
		value >>= 8
	}
	return asn1.BitString{Bytes: data, BitLength: n}
}

// BitStringValue is the inverse of BitString for strings of up to 64 bits.
func BitStringValue(b *asn1.BitString) uint64 {
	var value uint64
	for i := range b.BitLength {
		value = value<<1 | uint64(b.At(i))
	}
	return value
}

// NG-RANnodeUEXnAPID ::= INTEGER (0..4294967295)
type NGRANnodeUEXnAPID uint32

func (n NGRANnodeUEXnAPID) Encode(e *per.Encoder) error {
	return e.EncodeConstrainedWholeNumber(0, 4294967295, int64(n))
}

func (n *NGRANnodeUEXnAPID) Decode(d *per.Decoder) error {
	value, err := d.DecodeConstrainedWholeNumber(0, 4294967295)
	if err != nil {
		return err
	}
	*n = NGRANnodeUEXnAPID(value)
	return nil
}

// S-NSSAI ::= SEQUENCE {
//	sst          OCTET STRING (SIZE(1)),
//	sd           OCTET STRING (SIZE(3)) OPTIONAL,
//	iE-Extensions ProtocolExtensionContainer { {S-NSSAI-ExtIEs} } OPTIONAL,
//	...
// }
type SNSSAI struct {
	SST          uint8                  `json:"sst"`
	SD           *[3]byte               `json:"sd,omitempty"`
	IEExtensions *ie.Container          `json:"iE-Extensions,omitempty"`
	Additions    per.ExtensionAdditions `json:"-"`
}

func (s *SNSSAI) Encode(e *per.Encoder) error {
	if err := e.EncodeSequencePreamble(true, s.Additions.Present(), s.SD != nil, s.IEExtensions != nil); err != nil {
		return err
	}
	if err := e.EncodeOctetString([]byte{s.SST}, per.Ref[uint64](1), per.Ref[uint64](1), false); err != nil {
		return err
	}
	if s.SD != nil {
		if err := e.EncodeOctetString(s.SD[:], per.Ref[uint64](3), per.Ref[uint64](3), false); err != nil {
			return err
		}
	}
	return encodeTail(e, s.IEExtensions, s.Additions)
}

func (s *SNSSAI) Decode(d *per.Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 2)
	if err != nil {
		return err
	}
	sst, err := d.DecodeOctetString(per.Ref[uint64](1), per.Ref[uint64](1), false)
	if err != nil {
		return err
	}
	s.SST = sst[0]
	if optionals[0] {
		sd, err := d.DecodeOctetString(per.Ref[uint64](3), per.Ref[uint64](3), false)
		if err != nil {
			return err
		}
		s.SD = &[3]byte{}
		copy(s.SD[:], sd)
	}
	s.IEExtensions, s.Additions, err = decodeTail(d, optionals[1], extended, SNSSAIExtIEs)
	return err
}

// NR-CGI ::= SEQUENCE {
//	plmn-id       PLMN-Identity,
//	nr-CI         NR-Cell-Identity,
//	iE-Extensions ProtocolExtensionContainer { {NR-CGI-ExtIEs} } OPTIONAL,
//	...
// }
type NRCGI struct {
	PLMNID       PLMNIdentity           `json:"plmn-id"`
	NRCI         NRCellIdentity         `json:"nr-CI"`
	IEExtensions *ie.Container          `json:"iE-Extensions,omitempty"`
	Additions    per.ExtensionAdditions `json:"-"`
}

func (n *NRCGI) Encode(e *per.Encoder) error {
	if err := e.EncodeSequencePreamble(true, n.Additions.Present(), n.IEExtensions != nil); err != nil {
		return err
	}
	if err := n.PLMNID.Encode(e); err != nil {
		return err
	}
	if err := n.NRCI.Encode(e); err != nil {
		return err
	}
	return encodeTail(e, n.IEExtensions, n.Additions)
}

func (n *NRCGI) Decode(d *per.Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 1)
	if err != nil {
		return err
	}
	if err := n.PLMNID.Decode(d); err != nil {
		return err
	}
	if err := n.NRCI.Decode(d); err != nil {
		return err
	}
	n.IEExtensions, n.Additions, err = decodeTail(d, optionals[0], extended, NRCGIExtIEs)
	return err
}

// TimeToWait ::= ENUMERATED { v1s, v2s, v5s, v10s, v20s, v60s, ... }
type TimeToWait uint64

const (
	TimeToWaitV1s TimeToWait = iota
	TimeToWaitV2s
	TimeToWaitV5s
	TimeToWaitV10s
	TimeToWaitV20s
	TimeToWaitV60s
)

var timeToWait = per.Enumerated{
	Name:       "TimeToWait",
	Root:       []string{"v1s", "v2s", "v5s", "v10s", "v20s", "v60s"},
	Extensible: true,
}

func (t TimeToWait) Encode(e *per.Encoder) error {
	return timeToWait.Encode(e, uint64(t))
}

func (t *TimeToWait) Decode(d *per.Decoder) error {
	value, err := timeToWait.Decode(d)
	*t = TimeToWait(value)
	return err
}

func (t TimeToWait) String() string {
	return timeToWait.String(uint64(t))
}

func (t TimeToWait) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// encodeTail writes the optional iE-Extensions and the extension additions
// that close every extensible sequence of the catalog.
func encodeTail(e *per.Encoder, extensions *ie.Container, additions per.ExtensionAdditions) error {
	if extensions != nil {
		if err := extensions.Encode(e); err != nil {
			return err
		}
	}
	if additions.Present() {
		return e.EncodeExtensionAdditions(additions)
	}
	return nil
}

func decodeTail(d *per.Decoder, present, extended bool,
	catalog ie.Catalog) (*ie.Container, per.ExtensionAdditions, error) {
	var (
		extensions *ie.Container
		additions  per.ExtensionAdditions
	)
	if present {
		extensions = ie.NewExtensionContainer(catalog)
		if err := extensions.Decode(d); err != nil {
			return nil, nil, err
		}
	}
	if extended {
		var err error
		if additions, err = d.DecodeExtensionAdditions(); err != nil {
			return nil, nil, err
		}
	}
	return extensions, additions, nil
}
