// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parameter holds the typed workflow parameters a caller edits
// before an execution and converts them to native values for the wire.
package parameter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Type is the declared type of a parameter value.
type Type string

const (
	TypeString  Type = "STRING"
	TypeNumber  Type = "NUMBER"
	TypeBoolean Type = "BOOLEAN"
	TypeObject  Type = "OBJECT"
	TypeArray   Type = "ARRAY"
)

// Types lists every supported parameter type in display order.
var Types = []Type{TypeString, TypeNumber, TypeBoolean, TypeObject, TypeArray}

// ParseType parses a type name case-insensitively. An empty name is STRING.
func ParseType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return TypeString, nil
	}
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown parameter type %q (expected one of string, number, boolean, object, array)", s)
}

// Parameter is one named value supplied to a workflow. Value always holds
// the raw text as entered; Type decides how it is coerced.
type Parameter struct {
	ID    string `json:"id" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Type  Type   `json:"type" yaml:"type,omitempty"`
}

// New creates a parameter with a fresh id. An empty type defaults to STRING.
func New(name, value string, typ Type) Parameter {
	if typ == "" {
		typ = TypeString
	}
	return Parameter{
		ID:    uuid.NewString(),
		Name:  name,
		Value: value,
		Type:  typ,
	}
}

// List is the ordered, caller-edited collection of parameters.
// Ids are assigned once on Add and never reused.
type List struct {
	items []Parameter
}

// NewList builds a list from existing parameters, assigning ids to any
// entry that lacks one.
func NewList(params ...Parameter) *List {
	l := &List{}
	for _, p := range params {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.Type == "" {
			p.Type = TypeString
		}
		l.items = append(l.items, p)
	}
	return l
}

// Add appends a new parameter and returns it.
func (l *List) Add(name, value string, typ Type) Parameter {
	p := New(name, value, typ)
	l.items = append(l.items, p)
	return p
}

// Update replaces the name, value and type of the parameter with the given
// id in place. It reports whether the id was found.
func (l *List) Update(id, name, value string, typ Type) bool {
	for i := range l.items {
		if l.items[i].ID != id {
			continue
		}
		if typ == "" {
			typ = TypeString
		}
		l.items[i].Name = name
		l.items[i].Value = value
		l.items[i].Type = typ
		return true
	}
	return false
}

// Remove deletes the parameter with the given id. Unknown ids are ignored.
func (l *List) Remove(id string) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// Items returns a copy of the parameters in order.
func (l *List) Items() []Parameter {
	out := make([]Parameter, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of parameters.
func (l *List) Len() int {
	return len(l.items)
}
