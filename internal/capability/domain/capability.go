// Package domain models the FHIR capability statement for allow-list filtering.
//
// The model is deliberately shallow: the filter only interprets the
// document's resourceType, its rest components' modes and the type of each
// resource descriptor. Everything else is host-owned metadata and is carried
// as raw JSON so it round-trips through a filtering pass unmodified.
package domain

import (
	"encoding/json"

	allowlistDomain "github.com/fhirflare/capfilter/internal/allowlist/domain"
	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

// ResourceTypeCapabilityStatement is the resourceType value of a FHIR
// capability statement. Documents of any other type pass through unfiltered.
const ResourceTypeCapabilityStatement = "CapabilityStatement"

// ErrUnexpectedDocument indicates the host produced a document that is not
// a capability statement. The filter recovers by passing the original
// document through untouched.
var ErrUnexpectedDocument = apperrors.New("document is not a CapabilityStatement")

// ResourceEntry is one resource descriptor within an interaction group.
// The raw JSON object is retained verbatim so descriptors that survive
// filtering are serialized byte-identically.
type ResourceEntry struct {
	// Type is the resource-type name this descriptor advertises (e.g. "Patient").
	Type string

	raw json.RawMessage
}

// UnmarshalJSON extracts the descriptor's type and keeps the full object.
func (r *ResourceEntry) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	r.Type = probe.Type
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the original descriptor object unchanged.
func (r ResourceEntry) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type,omitempty"`
	}{Type: r.Type})
}

// RestComponent is one interaction group of the capability statement:
// a communication mode plus the ordered resource descriptors it supports.
type RestComponent struct {
	// Mode names the interaction style (e.g. "server" or "client").
	Mode string
	// Resource is the ordered list of resource descriptors.
	Resource []ResourceEntry

	hasResource bool
	extra       map[string]json.RawMessage
}

// UnmarshalJSON splits the component into the interpreted fields and the
// opaque remainder.
func (c *RestComponent) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["mode"]; ok {
		if err := json.Unmarshal(raw, &c.Mode); err != nil {
			return err
		}
		delete(fields, "mode")
	}
	if raw, ok := fields["resource"]; ok {
		if err := json.Unmarshal(raw, &c.Resource); err != nil {
			return err
		}
		c.hasResource = true
		delete(fields, "resource")
	}

	c.extra = fields
	return nil
}

// MarshalJSON reassembles the component, carrying opaque fields through.
func (c RestComponent) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(c.extra)+2)
	for key, value := range c.extra {
		fields[key] = value
	}

	if c.Mode != "" {
		mode, err := json.Marshal(c.Mode)
		if err != nil {
			return nil, err
		}
		fields["mode"] = mode
	}
	if c.hasResource || c.Resource != nil {
		resources := c.Resource
		if resources == nil {
			resources = []ResourceEntry{}
		}
		resource, err := json.Marshal(resources)
		if err != nil {
			return nil, err
		}
		fields["resource"] = resource
	}

	return json.Marshal(fields)
}

// CapabilityStatement is the host-produced self-description: the rest
// interaction groups plus every other field carried opaquely.
type CapabilityStatement struct {
	ResourceType string
	Rest         []RestComponent

	hasRest bool
	extra   map[string]json.RawMessage
}

// UnmarshalJSON splits the document into interpreted and opaque fields.
func (cs *CapabilityStatement) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["resourceType"]; ok {
		if err := json.Unmarshal(raw, &cs.ResourceType); err != nil {
			return err
		}
		delete(fields, "resourceType")
	}
	if raw, ok := fields["rest"]; ok {
		if err := json.Unmarshal(raw, &cs.Rest); err != nil {
			return err
		}
		cs.hasRest = true
		delete(fields, "rest")
	}

	cs.extra = fields
	return nil
}

// MarshalJSON reassembles the document, carrying opaque fields through.
func (cs CapabilityStatement) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(cs.extra)+2)
	for key, value := range cs.extra {
		fields[key] = value
	}

	if cs.ResourceType != "" {
		resourceType, err := json.Marshal(cs.ResourceType)
		if err != nil {
			return nil, err
		}
		fields["resourceType"] = resourceType
	}
	if cs.hasRest || cs.Rest != nil {
		rest, err := json.Marshal(cs.Rest)
		if err != nil {
			return nil, err
		}
		fields["rest"] = rest
	}

	return json.Marshal(fields)
}

// ParseCapabilityStatement decodes a capability statement from raw JSON.
// Returns ErrUnexpectedDocument when the payload is valid JSON but not a
// CapabilityStatement.
func ParseCapabilityStatement(data []byte) (*CapabilityStatement, error) {
	var statement CapabilityStatement
	if err := json.Unmarshal(data, &statement); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode capability document")
	}
	if statement.ResourceType != ResourceTypeCapabilityStatement {
		return nil, ErrUnexpectedDocument
	}
	return &statement, nil
}

// FilterResources removes, independently for each interaction group, every
// resource descriptor whose type is not a member of allowed. Retained
// descriptors keep their relative order and raw content; no other field of
// the document is touched. Returns the number of descriptors removed.
//
// Callers are expected to guard the empty-allowlist case themselves: an
// empty set means "apply no filtering", not "remove everything".
func (cs *CapabilityStatement) FilterResources(allowed allowlistDomain.Allowlist) int {
	removed := 0
	for i := range cs.Rest {
		rest := &cs.Rest[i]
		kept := rest.Resource[:0]
		for _, resource := range rest.Resource {
			if allowed.Contains(resource.Type) {
				kept = append(kept, resource)
			} else {
				removed++
			}
		}
		rest.Resource = kept
	}
	return removed
}

// ResourceTypes returns the descriptor types of each interaction group in
// document order, for diagnostic logging.
func (cs *CapabilityStatement) ResourceTypes() [][]string {
	groups := make([][]string, 0, len(cs.Rest))
	for _, rest := range cs.Rest {
		types := make([]string, 0, len(rest.Resource))
		for _, resource := range rest.Resource {
			types = append(types, resource.Type)
		}
		groups = append(groups, types)
	}
	return groups
}
