package openapi

import (
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
)

// schemaSet reflects Go types into named component schemas.
type schemaSet struct {
	named     map[string]map[string]interface{}
	names     map[reflect.Type]string
	overrides map[reflect.Type]map[string]interface{}
}

func newSchemaSet() *schemaSet {
	return &schemaSet{
		named:     make(map[string]map[string]interface{}),
		names:     make(map[reflect.Type]string),
		overrides: make(map[reflect.Type]map[string]interface{}),
	}
}

// nameFor returns the component name of t. A type whose name is already
// taken by a type from another package is prefixed with its package name,
// so doctor.Patch becomes DoctorPatch.
func (s *schemaSet) nameFor(t reflect.Type) (string, bool) {
	if name, ok := s.names[t]; ok {
		return name, false
	}
	name := t.Name()
	if _, taken := s.named[name]; taken {
		pkg := t.PkgPath()
		if i := strings.LastIndex(pkg, "/"); i >= 0 {
			pkg = pkg[i+1:]
		}
		if pkg != "" {
			name = strings.ToUpper(pkg[:1]) + pkg[1:] + name
		}
	}
	s.names[t] = name
	return name, true
}

func (s *schemaSet) components() map[string]interface{} {
	out := make(map[string]interface{}, len(s.named))
	for k, v := range s.named {
		out[k] = v
	}
	return out
}

// of returns the schema for the type of v. Named structs become component
// references.
func (s *schemaSet) of(v interface{}) map[string]interface{} {
	return s.forType(reflect.TypeOf(v))
}

func (s *schemaSet) forType(t reflect.Type) map[string]interface{} {
	if sch, ok := s.overrides[t]; ok {
		return sch
	}
	switch t {
	case timeType:
		return map[string]interface{}{"type": "string", "format": "date-time"}
	case objectIDType:
		return map[string]interface{}{"type": "string", "pattern": "^[0-9a-f]{24}$"}
	}

	switch t.Kind() {
	case reflect.Ptr:
		sch := s.forType(t.Elem())
		if _, isRef := sch["$ref"]; isRef {
			return sch
		}
		out := map[string]interface{}{"nullable": true}
		for k, v := range sch {
			out[k] = v
		}
		return out
	case reflect.String:
		return map[string]interface{}{"type": "string"}
	case reflect.Bool:
		return map[string]interface{}{"type": "boolean"}
	case reflect.Int, reflect.Int32, reflect.Int64:
		return map[string]interface{}{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]interface{}{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]interface{}{"type": "array", "items": s.forType(t.Elem())}
	case reflect.Map:
		return map[string]interface{}{"type": "object", "additionalProperties": s.forType(t.Elem())}
	case reflect.Struct:
		if t.Name() == "" {
			return s.object(t)
		}
		name, fresh := s.nameFor(t)
		if fresh {
			s.named[name] = map[string]interface{}{}
			s.named[name] = s.object(t)
		}
		return map[string]interface{}{"$ref": "#/components/schemas/" + name}
	}
	return map[string]interface{}{}
}

// object lists the JSON-visible fields of t. Embedded structs are flattened
// the way encoding/json flattens them.
func (s *schemaSet) object(t reflect.Type) map[string]interface{} {
	props := make(map[string]interface{})
	s.collect(t, props)
	return map[string]interface{}{"type": "object", "properties": props}
}

func (s *schemaSet) collect(t reflect.Type, props map[string]interface{}) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			s.collect(f.Type, props)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		props[name] = s.forType(f.Type)
	}
}
