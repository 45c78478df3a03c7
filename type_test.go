package hostbind

import "testing"

func TestNullable(t *testing.T) {
	integer := Primitive(Integer)

	tests := []struct {
		name string
		in   TypeDescriptor
		want TypeDescriptor
	}{
		{"wraps primitive", integer, NullableType{Inner: integer}},
		{"wraps list", List(integer), NullableType{Inner: List(integer)}},
		{"wraps opaque", Opaque("Record"), NullableType{Inner: Opaque("Record")}},
		{"idempotent", Nullable(integer), NullableType{Inner: integer}},
		{"dynamic unchanged", Dynamic(), Dynamic()},
		{"null unchanged", Primitive(Null), Primitive(Null)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nullable(tt.in)
			if got != tt.want {
				t.Errorf("Nullable(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if !IsNullable(got) {
				t.Errorf("IsNullable(%v) = false", got)
			}
		})
	}

	if IsNullable(integer) || IsNullable(List(Nullable(integer))) {
		t.Error("IsNullable reports a non-nullable type as nullable")
	}
}

func TestEqualType(t *testing.T) {
	a := Map(Primitive(String), List(Nullable(Opaque("Record"))))
	b := Map(Primitive(String), List(Nullable(Opaque("Record"))))
	if !EqualType(a, b) {
		t.Error("separately built descriptors are not equal")
	}

	tests := []struct {
		name string
		x, y TypeDescriptor
	}{
		{"different primitive", Primitive(Integer), Primitive(Float)},
		{"nullable vs plain", Nullable(Primitive(Integer)), Primitive(Integer)},
		{"different element", List(Primitive(Integer)), List(Primitive(String))},
		{"different opaque", Opaque("A"), Opaque("B")},
		{"list vs map", List(Primitive(String)), Map(Primitive(String), Primitive(String))},
		{"nil vs dynamic", nil, Dynamic()},
	}
	for _, tt := range tests {
		if EqualType(tt.x, tt.y) {
			t.Errorf("%s: EqualType(%v, %v) = true", tt.name, tt.x, tt.y)
		}
	}
	if !EqualType(nil, nil) {
		t.Error("EqualType(nil, nil) = false")
	}
}

func TestDepth(t *testing.T) {
	integer := Primitive(Integer)
	tests := []struct {
		typ  TypeDescriptor
		want int
	}{
		{integer, 0},
		{Opaque("Record"), 0},
		{List(integer), 1},
		{List(List(integer)), 2},
		{Map(Primitive(String), List(integer)), 2},
		{Nullable(List(Nullable(List(integer)))), 2},
	}
	for _, tt := range tests {
		if got := Depth(tt.typ); got != tt.want {
			t.Errorf("Depth(%v) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  TypeDescriptor
		want string
	}{
		{Dynamic(), "Dynamic"},
		{Primitive(Number), "Number"},
		{Nullable(Primitive(Integer)), "Integer?"},
		{List(Nullable(Opaque("Record"))), "List<Record?>"},
		{Map(Primitive(String), List(Primitive(Bool))), "Map<String, List<Bool>>"},
		{List(nil), "List<<nil>>"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	integer := Primitive(Integer)
	if got := Unwrap(Nullable(integer)); got != integer {
		t.Errorf("Unwrap(Integer?) = %v", got)
	}
	if got := Unwrap(integer); got != integer {
		t.Errorf("Unwrap(Integer) = %v", got)
	}
}

func TestParsePrimitiveKind(t *testing.T) {
	for k := Bool; k <= String; k++ {
		got, ok := ParsePrimitiveKind(k.String())
		if !ok || got != k {
			t.Errorf("ParsePrimitiveKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if got, ok := ParsePrimitiveKind("integer"); !ok || got != Integer {
		t.Errorf("ParsePrimitiveKind is case sensitive")
	}
	if _, ok := ParsePrimitiveKind("Decimal"); ok {
		t.Error("ParsePrimitiveKind(Decimal) succeeded")
	}
}
