package hostbind

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON serialization support for descriptors.
// Every descriptor object carries a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for DynamicType.
func (t DynamicType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
	}{Kind: "dynamic"})
}

// MarshalJSON implements json.Marshaler for PrimitiveType.
func (t PrimitiveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string `json:"kind"`
		Primitive string `json:"primitive"`
	}{Kind: "primitive", Primitive: t.Primitive.String()})
}

// MarshalJSON implements json.Marshaler for ListType.
func (t ListType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
	}{Kind: "list", Element: t.Element})
}

// MarshalJSON implements json.Marshaler for MapType.
func (t MapType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string         `json:"kind"`
		Key   TypeDescriptor `json:"key"`
		Value TypeDescriptor `json:"value"`
	}{Kind: "map", Key: t.Key, Value: t.Value})
}

// MarshalJSON implements json.Marshaler for OpaqueType.
func (t OpaqueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{Kind: "opaque", Name: t.Name})
}

// MarshalJSON implements json.Marshaler for NullableType.
func (t NullableType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string         `json:"kind"`
		Inner TypeDescriptor `json:"inner"`
	}{Kind: "nullable", Inner: t.Inner})
}

// wireType is the union of all descriptor JSON shapes.
type wireType struct {
	Kind      string              `json:"kind"`
	Primitive string              `json:"primitive"`
	Name      string              `json:"name"`
	Element   jsoniter.RawMessage `json:"element"`
	Key       jsoniter.RawMessage `json:"key"`
	Value     jsoniter.RawMessage `json:"value"`
	Inner     jsoniter.RawMessage `json:"inner"`
}

// DecodeType parses the JSON form of a descriptor, as produced by
// json.Marshal on any TypeDescriptor.
func DecodeType(data []byte) (TypeDescriptor, error) {
	var w wireType
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode type descriptor: %w", err)
	}

	switch w.Kind {
	case "dynamic":
		return Dynamic(), nil
	case "primitive":
		k, ok := ParsePrimitiveKind(w.Primitive)
		if !ok {
			return nil, fmt.Errorf("decode type descriptor: unknown primitive %q", w.Primitive)
		}
		return Primitive(k), nil
	case "opaque":
		return Opaque(w.Name), nil
	case "list":
		elem, err := DecodeType(w.Element)
		if err != nil {
			return nil, err
		}
		return List(elem), nil
	case "map":
		key, err := DecodeType(w.Key)
		if err != nil {
			return nil, err
		}
		value, err := DecodeType(w.Value)
		if err != nil {
			return nil, err
		}
		return Map(key, value), nil
	case "nullable":
		inner, err := DecodeType(w.Inner)
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	default:
		return nil, fmt.Errorf("decode type descriptor: unknown kind %q", w.Kind)
	}
}
