package yamlutil

import (
	"bytes"
	"errors"
	"testing"
)

type doc struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestUnmarshalStrict(t *testing.T) {
	var d doc
	if err := UnmarshalStrict([]byte("name: a\ncount: 2\n"), &d); err != nil {
		t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
	}
	if d.Name != "a" || d.Count != 2 {
		t.Errorf("decoded = %+v", d)
	}
}

func TestUnmarshalStrictUnknownField(t *testing.T) {
	var d doc
	if err := UnmarshalStrict([]byte("name: a\nbogus: true\n"), &d); err == nil {
		t.Error("UnmarshalStrict() should reject unknown fields")
	}
}

func TestUnmarshalStrictValidation(t *testing.T) {
	var d doc
	if err := UnmarshalStrict(nil, &d); !errors.Is(err, ErrNilData) {
		t.Errorf("nil data error = %v, want ErrNilData", err)
	}
	if err := UnmarshalStrict([]byte("name: a"), nil); !errors.Is(err, ErrNilDestination) {
		t.Errorf("nil destination error = %v, want ErrNilDestination", err)
	}

	big := bytes.Repeat([]byte("x"), MaxInputSize+1)
	if err := UnmarshalStrict(big, &d); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("oversized input error = %v, want ErrInputTooLarge", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(doc{Name: "a", Count: 3})
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}

	var d doc
	if err := UnmarshalStrict(data, &d); err != nil {
		t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
	}
	if d != (doc{Name: "a", Count: 3}) {
		t.Errorf("round trip = %+v", d)
	}
}
