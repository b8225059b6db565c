package tokenstore

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecode(t *testing.T) {
	saved := time.Unix(1700000000, 42)
	data, err := Encode(Record{Token: "header.payload.sig", OIDC: true, SavedAt: saved})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != recordFormatVersionCurrent {
		t.Fatalf("unexpected version byte %d", data[0])
	}

	rec, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Token != "header.payload.sig" || !rec.OIDC || !rec.SavedAt.Equal(saved) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	valid, _ := Encode(Record{Token: "abc"})
	cases := map[string][]byte{
		"empty":         nil,
		"bad version":   append([]byte{9}, valid[1:]...),
		"truncated":     valid[:len(valid)-1],
		"trailing data": append(append([]byte(nil), valid...), 'x'),
		"header only":   valid[:6],
	}
	for name, data := range cases {
		if _, err := Decode(data); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func FuzzDecode(f *testing.F) {
	seed, _ := Encode(Record{Token: "seed", OIDC: true, SavedAt: time.Unix(1, 0)})
	f.Add(seed)
	f.Add([]byte{1})
	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := Decode(data)
		if err != nil {
			return
		}
		again, err := Encode(rec)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if _, err := Decode(again); err != nil {
			t.Fatalf("decode of re-encoded record failed: %v", err)
		}
	})
}
