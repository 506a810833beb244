package ie

import (
	"encoding/json"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/thebagchi/xnap-go/lib/per"
)

// Kind selects the size constraint of a container.
type Kind uint8

const (
	// IEs is ProtocolIE-Container, SIZE (0..maxProtocolIEs).
	IEs Kind = iota
	// Extensions is ProtocolExtensionContainer, SIZE (1..maxProtocolExtensions).
	Extensions
)

const (
	MAX_PROTOCOL_IES        = 65535
	MAX_PROTOCOL_EXTENSIONS = 65535
)

func (k Kind) bounds() (int64, int64) {
	if k == Extensions {
		return 1, MAX_PROTOCOL_EXTENSIONS
	}
	return 0, MAX_PROTOCOL_IES
}

// Container is a ProtocolIE-Container or a ProtocolExtensionContainer. It
// owns its fields, kept in wire order.
type Container struct {
	kind        Kind
	catalog     Catalog
	fields      []Field
	diagnostics Diagnostics
}

// NewIEContainer returns an empty ProtocolIE-Container over catalog.
func NewIEContainer(catalog Catalog) *Container {
	return &Container{kind: IEs, catalog: catalog}
}

// NewExtensionContainer returns an empty ProtocolExtensionContainer over
// catalog.
func NewExtensionContainer(catalog Catalog) *Container {
	return &Container{kind: Extensions, catalog: catalog}
}

func (c *Container) Catalog() Catalog {
	return c.catalog
}

func (c *Container) Kind() Kind {
	return c.kind
}

// Add appends the value of a known id with its catalog criticality.
func (c *Container) Add(id uint32, value per.Value) error {
	if !c.catalog.IsIDValid(id) {
		return errors.Wrapf(per.ErrMalformed, "%s: unknown id %d", c.catalog.Name(), id)
	}
	return c.AddField(Field{ID: id, Criticality: c.catalog.Criticality(id), Value: value})
}

// AddField appends a field as is. Each id may appear once.
func (c *Container) AddField(field Field) error {
	if _, ok := c.Get(field.ID); ok {
		return errors.Wrapf(per.ErrMalformed, "%s: id %d added twice", c.catalog.Name(), field.ID)
	}
	c.fields = append(c.fields, field)
	return nil
}

// Get returns the value of id.
func (c *Container) Get(id uint32) (per.Value, bool) {
	for i := range c.fields {
		if c.fields[i].ID == id {
			return c.fields[i].Value, true
		}
	}
	return nil, false
}

// Fields returns the fields in wire order.
func (c *Container) Fields() []Field {
	return c.fields
}

func (c *Container) Len() int {
	return len(c.fields)
}

// Diagnostics returns what the last Decode did not understand or found
// missing in this container.
func (c *Container) Diagnostics() Diagnostics {
	return c.diagnostics
}

// Equal compares kind, catalog and fields; diagnostics are ignored.
func (c *Container) Equal(o *Container) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.kind != o.kind || c.catalog.Name() != o.catalog.Name() {
		return false
	}
	return cmp.Equal(c.fields, o.fields)
}

func (c *Container) MarshalJSON() ([]byte, error) {
	fields := make([]fieldJSON, 0, len(c.fields))
	for _, field := range c.fields {
		fields = append(fields, fieldJSON{
			ID:          field.ID,
			Name:        IDName(c.catalog, field.ID),
			Criticality: field.Criticality,
			Value:       field.Value,
		})
	}
	return json.Marshal(fields)
}

func (c *Container) Encode(e *per.Encoder) error {
	lb, ub := c.kind.bounds()
	count := int64(len(c.fields))
	if count < lb || count > ub {
		return errors.Wrapf(per.ErrLengthOutOfRange, "%s: %d fields outside %d..%d", c.catalog.Name(), count, lb, ub)
	}
	for idx := range c.catalog.Len() {
		id := c.catalog.IdxToID(idx)
		if c.catalog.Presence(id) != Mandatory {
			continue
		}
		if _, ok := c.Get(id); !ok {
			return errors.Wrapf(per.ErrMalformed, "%s: mandatory id %d absent", c.catalog.Name(), id)
		}
	}
	if err := e.EncodeConstrainedWholeNumber(lb, ub, count); err != nil {
		return err
	}
	for i := range c.fields {
		if err := c.fields[i].Encode(e); err != nil {
			return errors.Wrapf(err, "%s: id %d", c.catalog.Name(), c.fields[i].ID)
		}
	}
	return nil
}

type state uint8

const (
	stateStart state = iota
	stateReadCount
	stateReadEntryHeader
	stateDecode
	stateSkipUnknown
	stateDone
	stateFailed
)

// Decode reads the container. Unknown ids are handled by their criticality:
// reject fails with per.ErrUnknownCriticalIE, ignore keeps the raw value and
// notify keeps it and records a not-understood diagnostic. Missing mandatory
// ids are recorded and fail with per.ErrMalformed when their criticality is
// reject.
func (c *Container) Decode(d *per.Decoder) error {
	var (
		name   = c.catalog.Name()
		logger = d.Logger().WithField("container", name)
		seen   = mapset.NewThreadUnsafeSet[uint32]()
		fields []Field
		count  int64
		field  Field
		data   []byte
		err    error
	)
	c.diagnostics = nil

	for current := stateStart; ; {
		switch current {
		case stateStart:
			current = stateReadCount

		case stateReadCount:
			lb, ub := c.kind.bounds()
			count, err = d.DecodeConstrainedWholeNumber(lb, ub)
			if err != nil {
				current = stateFailed
				break
			}
			if limit := d.Limit(); limit > 0 && uint64(count) > limit {
				err = errors.Wrapf(per.ErrLengthOutOfRange, "%d fields exceed limit %d", count, limit)
				current = stateFailed
				break
			}
			fields = make([]Field, 0, min(count, 64))
			current = stateReadEntryHeader

		case stateReadEntryHeader:
			if int64(len(fields)) == count {
				current = stateDone
				break
			}
			field = Field{}
			if err = field.decodeHeader(d); err != nil {
				current = stateFailed
				break
			}
			if data, err = d.DecodeOpenType(); err != nil {
				current = stateFailed
				break
			}
			current = stateSkipUnknown
			if c.catalog.IsIDValid(field.ID) {
				current = stateDecode
			}

		case stateDecode:
			if !seen.Add(field.ID) {
				err = errors.Wrapf(per.ErrMalformed, "id %d repeated", field.ID)
				current = stateFailed
				break
			}
			field.Value = c.catalog.NewValue(field.ID)
			if err = d.DecodeComplete(data, field.Value); err != nil {
				err = errors.Wrapf(err, "id %d", field.ID)
				current = stateFailed
				break
			}
			fields = append(fields, field)
			current = stateReadEntryHeader

		case stateSkipUnknown:
			entry := logger.WithFields(logrus.Fields{
				"id":          field.ID,
				"criticality": field.Criticality,
			})
			switch field.Criticality {
			case Reject:
				item := DiagnosticItem{Criticality: Reject, ID: field.ID, TypeOfError: NotUnderstood, Container: name}
				c.report(d, item)
				return &CriticalError{
					Kind:        per.ErrUnknownCriticalIE,
					Container:   name,
					ID:          field.ID,
					Criticality: Reject,
					Diagnostics: FromIssues(d.Issues()),
				}
			case Notify:
				entry.Info("information element not understood")
				c.report(d, DiagnosticItem{Criticality: Notify, ID: field.ID, TypeOfError: NotUnderstood, Container: name})
			default:
				entry.Debug("skipping unknown information element")
			}
			raw := per.OpenType(data)
			fields = append(fields, Field{ID: field.ID, Criticality: field.Criticality, Value: &raw})
			current = stateReadEntryHeader

		case stateDone:
			c.fields = fields
			return c.checkMandatory(d, seen)

		case stateFailed:
			return errors.Wrapf(err, "%s", name)
		}
	}
}

// checkMandatory records every mandatory id absent from seen and fails on
// the first one whose criticality is reject.
func (c *Container) checkMandatory(d *per.Decoder, seen mapset.Set[uint32]) error {
	var failed *CriticalError
	for idx := range c.catalog.Len() {
		id := c.catalog.IdxToID(idx)
		if c.catalog.Presence(id) != Mandatory || seen.Contains(id) {
			continue
		}
		criticality := c.catalog.Criticality(id)
		c.report(d, DiagnosticItem{Criticality: criticality, ID: id, TypeOfError: Missing, Container: c.catalog.Name()})
		d.Logger().WithFields(logrus.Fields{
			"container":   c.catalog.Name(),
			"id":          id,
			"criticality": criticality,
		}).Debug("mandatory information element missing")
		if criticality == Reject && failed == nil {
			failed = &CriticalError{
				Kind:        per.ErrMalformed,
				Container:   c.catalog.Name(),
				ID:          id,
				Criticality: criticality,
			}
		}
	}
	if failed != nil {
		failed.Diagnostics = FromIssues(d.Issues())
		return failed
	}
	return nil
}

func (c *Container) report(d *per.Decoder, item DiagnosticItem) {
	c.diagnostics = append(c.diagnostics, item)
	d.Report(item.issue())
}

// SingleContainer is a ProtocolIE-SingleContainer: exactly one field, used
// by choice-extension alternatives.
type SingleContainer struct {
	catalog Catalog
	Field   Field
}

// NewSingleContainer returns a single container over catalog.
func NewSingleContainer(catalog Catalog) *SingleContainer {
	return &SingleContainer{catalog: catalog}
}

func (s *SingleContainer) Encode(e *per.Encoder) error {
	return s.Field.Encode(e)
}

func (s *SingleContainer) Decode(d *per.Decoder) error {
	var field Field
	if err := field.decodeHeader(d); err != nil {
		return err
	}
	data, err := d.DecodeOpenType()
	if err != nil {
		return err
	}
	if !s.catalog.IsIDValid(field.ID) {
		name := s.catalog.Name()
		item := DiagnosticItem{Criticality: field.Criticality, ID: field.ID, TypeOfError: NotUnderstood, Container: name}
		entry := d.Logger().WithFields(logrus.Fields{
			"container":   name,
			"id":          field.ID,
			"criticality": field.Criticality,
		})
		switch field.Criticality {
		case Reject:
			d.Report(item.issue())
			return &CriticalError{
				Kind:        per.ErrUnknownCriticalIE,
				Container:   name,
				ID:          field.ID,
				Criticality: Reject,
				Diagnostics: FromIssues(d.Issues()),
			}
		case Notify:
			entry.Info("information element not understood")
			d.Report(item.issue())
		default:
			entry.Debug("skipping unknown information element")
		}
		raw := per.OpenType(data)
		field.Value = &raw
		s.Field = field
		return nil
	}
	field.Value = s.catalog.NewValue(field.ID)
	if err := d.DecodeComplete(data, field.Value); err != nil {
		return errors.Wrapf(err, "%s: id %d", s.catalog.Name(), field.ID)
	}
	s.Field = field
	return nil
}

func (s *SingleContainer) Equal(o *SingleContainer) bool {
	if s == nil || o == nil {
		return s == o
	}
	return cmp.Equal(s.Field, o.Field)
}

func (s *SingleContainer) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldJSON{
		ID:          s.Field.ID,
		Name:        IDName(s.catalog, s.Field.ID),
		Criticality: s.Field.Criticality,
		Value:       s.Field.Value,
	})
}
