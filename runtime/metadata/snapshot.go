package metadata

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// typeNamespace seeds the name-based type IDs.
var typeNamespace = uuid.MustParse("6f1c2b1e-3d5a-4f0b-9c1e-7a2d4e8b9f10")

// TypeID returns a stable identifier for t derived from its package path
// and name. It does not change between builds.
func TypeID(t reflect.Type) uuid.UUID {
	return TypeIDFor(t.PkgPath(), t.Name())
}

// TypeIDFor is TypeID for a type known only by package path and name.
func TypeIDFor(pkgPath, name string) uuid.UUID {
	return uuid.NewSHA1(typeNamespace, []byte(pkgPath+"."+name))
}

// Snapshot is a serializable copy of a registry.
type Snapshot struct {
	Generation uint64          `json:"generation" yaml:"generation"`
	Classes    []ClassSnapshot `json:"classes" yaml:"classes"`
	Enums      []EnumSnapshot  `json:"enums,omitempty" yaml:"enums,omitempty"`
}

// ClassSnapshot is the serializable form of ClassMeta.
type ClassSnapshot struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	GoType      string         `json:"go_type" yaml:"go_type"`
	Size        uintptr        `json:"size" yaml:"size"`
	Base        string         `json:"base,omitempty" yaml:"base,omitempty"`
	BaseID      string         `json:"base_id,omitempty" yaml:"base_id,omitempty"`
	File        string         `json:"file,omitempty" yaml:"file,omitempty"`
	Line        int            `json:"line,omitempty" yaml:"line,omitempty"`
	Meta        string         `json:"meta,omitempty" yaml:"meta,omitempty"`
	Fields      []FactSnapshot `json:"fields,omitempty" yaml:"fields,omitempty"`
	MemberTypes []FactSnapshot `json:"member_types,omitempty" yaml:"member_types,omitempty"`
	Subclasses  []string       `json:"subclasses,omitempty" yaml:"subclasses,omitempty"`
}

// FactSnapshot is the serializable form of Fact.
type FactSnapshot struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Type   string `json:"type" yaml:"type"`
	Member bool   `json:"member" yaml:"member"`
	Meta   string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// EnumSnapshot is the serializable form of EnumMeta.
type EnumSnapshot struct {
	ID     string             `json:"id" yaml:"id"`
	Name   string             `json:"name" yaml:"name"`
	GoType string             `json:"go_type" yaml:"go_type"`
	Size   uintptr            `json:"size" yaml:"size"`
	Meta   string             `json:"meta,omitempty" yaml:"meta,omitempty"`
	Items  []EnumItemSnapshot `json:"items" yaml:"items"`
}

// EnumItemSnapshot is the serializable form of EnumItem.
type EnumItemSnapshot struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Meta  string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Snapshot copies the registry into its serializable form. Classes and enums
// keep definition order.
func (r *Registry) Snapshot() *Snapshot {
	s := &Snapshot{Generation: r.Generation()}

	for _, c := range r.Classes() {
		cs := ClassSnapshot{
			ID:     TypeID(c.Type).String(),
			Name:   c.Name,
			GoType: c.Type.String(),
			Size:   c.Size,
			File:   c.File,
			Line:   c.Line,
			Meta:   metaString(c.Meta),
		}
		if c.HasBase() {
			cs.Base = c.Base().Name
			cs.BaseID = TypeID(c.BaseType()).String()
		}
		cs.Fields = factSnapshots(c.Fields())
		cs.MemberTypes = factSnapshots(c.MemberTypes())
		for _, sub := range c.DirectSubclasses() {
			cs.Subclasses = append(cs.Subclasses, sub.Name)
		}
		s.Classes = append(s.Classes, cs)
	}

	for _, e := range r.enumEntries() {
		s.Enums = append(s.Enums, e.snapshot())
	}
	return s
}

func factSnapshots(facts []*Fact) []FactSnapshot {
	var out []FactSnapshot
	for _, f := range facts {
		out = append(out, FactSnapshot{
			Index:  f.Index,
			Name:   f.Name,
			Kind:   f.Kind.String(),
			Type:   f.Type.String(),
			Member: f.IsMember(),
			Meta:   metaString(f.Meta),
		})
	}
	return out
}

func metaString(m any) string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%+v", m)
}

// JSON encodes the snapshot as indented JSON.
func (s *Snapshot) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// YAML encodes the snapshot as YAML.
func (s *Snapshot) YAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}
