package ie

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/thebagchi/xnap-go/lib/per"
)

// ProtocolIE-Field / ProtocolExtensionField
//
//	id          ProtocolIE-ID ::= INTEGER (0..65535)
//	criticality Criticality
//	value       open type
const MAX_PROTOCOL_IE_ID = 65535

// Field is one entry of a container. Values of ids unknown to the catalog
// are held as *per.OpenType.
type Field struct {
	ID          uint32
	Criticality Criticality
	Value       per.Value
}

func (f *Field) Encode(e *per.Encoder) error {
	if f.Value == nil {
		return errors.Wrapf(per.ErrMalformed, "id %d has no value", f.ID)
	}
	if err := f.encodeHeader(e); err != nil {
		return err
	}
	return e.EncodeOpenType(f.Value)
}

func (f *Field) encodeHeader(e *per.Encoder) error {
	if err := e.EncodeConstrainedWholeNumber(0, MAX_PROTOCOL_IE_ID, int64(f.ID)); err != nil {
		return err
	}
	return f.Criticality.Encode(e)
}

func (f *Field) decodeHeader(d *per.Decoder) error {
	id, err := d.DecodeConstrainedWholeNumber(0, MAX_PROTOCOL_IE_ID)
	if err != nil {
		return err
	}
	f.ID = uint32(id)
	return f.Criticality.Decode(d)
}

// Known reports whether the value was decoded through the catalog.
func (f *Field) Known() bool {
	_, raw := f.Value.(*per.OpenType)
	return !raw
}

// fieldJSON is a field as rendered by containers, which know the IE names.
type fieldJSON struct {
	ID          uint32      `json:"id"`
	Name        string      `json:"name"`
	Criticality Criticality `json:"criticality"`
	Value       any         `json:"value"`
}

// MarshalJSON renders a field on its own. Without a catalog there is no name.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          uint32      `json:"id"`
		Criticality Criticality `json:"criticality"`
		Value       any         `json:"value"`
	}{ID: f.ID, Criticality: f.Criticality, Value: f.Value})
}
