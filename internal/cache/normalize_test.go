package cache

import (
	"reflect"
	"testing"
)

func TestDecodeItems_UnwrapsAllEnvelopeShapes(t *testing.T) {
	t.Parallel()

	want := []item{{ID: "1", Name: "GA"}, {ID: "2", Name: "VIP"}}
	list := `[{"id":"1","name":"GA"},{"id":"2","name":"VIP"}]`

	tests := []struct {
		name    string
		payload string
	}{
		{"bare array", list},
		{"data wrapper", `{"data":` + list + `}`},
		{"data.content wrapper", `{"data":{"content":` + list + `,"total":2}}`},
		{"content wrapper", `{"content":` + list + `}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeItems[item]([]byte(tt.payload))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestDecodeItems_EmptyAndNull(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "null", "[]", `{"data":[]}`} {
		got, err := DecodeItems[item]([]byte(payload))
		if err != nil {
			t.Fatalf("payload %q: %v", payload, err)
		}
		if len(got) != 0 {
			t.Fatalf("payload %q: expected no items, got %+v", payload, got)
		}
	}
}

func TestDecodeItems_RejectsUnknownShape(t *testing.T) {
	t.Parallel()

	if _, err := DecodeItems[item]([]byte(`{"results":[{"id":"1"}]}`)); err == nil {
		t.Fatal("expected an error for an unrecognized envelope")
	}
}
