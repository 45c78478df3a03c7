package annotation

import (
	"slices"
	"testing"
)

func TestParseNamespace(t *testing.T) {
	tests := []struct {
		args    string
		want    string
		wantErr bool
	}{
		{args: "", want: ""},
		{args: "calc", want: "calc"},
		{args: "name=calc", want: "calc"},
		{args: "  name=calc  ", want: "calc"},
		{args: "calc math", wantErr: true},
		{args: "calc name=math", wantErr: true},
		{args: "label=calc", wantErr: true},
		{args: "=calc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := ParseNamespace(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseNamespace(%q) = %+v, want error", tt.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNamespace(%q) error: %v", tt.args, err)
			}
			if got.Name != tt.want {
				t.Errorf("ParseNamespace(%q).Name = %q, want %q", tt.args, got.Name, tt.want)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	got, err := ParseMethod([]string{"name=plus", "skip=true"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "plus" || !got.Skip {
		t.Errorf("ParseMethod = %+v, want {Name:plus Skip:true}", got)
	}

	got, err = ParseMethod(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != (MethodOptions{}) {
		t.Errorf("ParseMethod(nil) = %+v, want zero", got)
	}

	if _, err := ParseMethod([]string{"skip=maybe"}); err == nil {
		t.Error("ParseMethod(skip=maybe) should fail")
	}
	if _, err := ParseMethod([]string{"plus"}); err == nil {
		t.Error("ParseMethod(bare word) should fail")
	}
}

func TestParseNamed(t *testing.T) {
	got := ParseNamed([]string{"limit offset", " force"})
	want := []string{"limit", "offset", "force"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseNamed = %v, want %v", got, want)
	}
}
