package prompts

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Schema describes the JSON shape a capability expects back. It is sent to
// the model as a structured output hint and checked again on the reply.
type Schema struct {
	Type       Type               `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Enum       []string           `json:"enum,omitempty"`
}

func str() *Schema { return &Schema{Type: TypeString} }

func strEnum(values ...string) *Schema { return &Schema{Type: TypeString, Enum: values} }

func arrayOf(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

// object builds an object schema whose properties are all required.
func object(props map[string]*Schema) *Schema {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	slices.Sort(required)
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// JSON returns the schema as a JSON Schema document.
func (s *Schema) JSON() json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// Check validates a value decoded by encoding/json into interface{} against
// s: types, required properties and enums. The first violation is returned.
func (s *Schema) Check(v interface{}) error {
	return s.check("$", v)
}

func (s *Schema) check(path string, v interface{}) error {
	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return typeError(path, s.Type, v)
		}
		for _, name := range s.Required {
			if val, present := obj[name]; !present || val == nil {
				return fmt.Errorf("%s: missing required field %q", path, name)
			}
		}
		for name, prop := range s.Properties {
			val, present := obj[name]
			if !present || val == nil {
				continue
			}
			if err := prop.check(path+"."+name, val); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]interface{})
		if !ok {
			return typeError(path, s.Type, v)
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.check(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
					return err
				}
			}
		}
	case TypeString:
		sv, ok := v.(string)
		if !ok {
			return typeError(path, s.Type, v)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, sv) {
			return fmt.Errorf("%s: %q is not one of %s", path, sv, strings.Join(s.Enum, ", "))
		}
	case TypeInteger:
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return typeError(path, s.Type, v)
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return typeError(path, s.Type, v)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return typeError(path, s.Type, v)
		}
	}
	return nil
}

func typeError(path string, want Type, got interface{}) error {
	return fmt.Errorf("%s: expected %s, got %T", path, want, got)
}
