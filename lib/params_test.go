package lib

import (
	"sync"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	expected := Params{LowH: 0, LowS: 0, LowV: 0, HighH: 179, HighS: 255, HighV: 255}
	if p != expected {
		t.Errorf("Expected defaults %v, got %v", expected, p)
	}
}

func TestParamsSetOnlyTouchesOneField(t *testing.T) {
	p := DefaultParams()
	p.Set(FieldLowH, 50)

	expected := DefaultParams()
	expected.LowH = 50
	if p != expected {
		t.Errorf("Expected %v, got %v", expected, p)
	}
}

func TestParamsGetSetEveryField(t *testing.T) {
	var p Params
	for i, f := range Fields {
		p.Set(f, i+1)
	}
	for i, f := range Fields {
		if got := p.Get(f); got != i+1 {
			t.Errorf("Field %s: expected %d, got %d", f, i+1, got)
		}
	}
	expected := Params{LowH: 1, LowS: 2, LowV: 3, HighH: 4, HighS: 5, HighV: 6}
	if p != expected {
		t.Errorf("Expected %v, got %v", expected, p)
	}
}

func TestParamsSetAcceptsOutOfRange(t *testing.T) {
	p := DefaultParams()
	p.Set(FieldHighH, 400)
	p.Set(FieldLowS, -3)
	if p.HighH != 400 || p.LowS != -3 {
		t.Errorf("Out of range values should be stored as given, got %v", p)
	}
}

func TestParamsSetUnknownFieldIsIgnored(t *testing.T) {
	p := DefaultParams()
	p.Set(Field(42), 7)
	if p != DefaultParams() {
		t.Errorf("Unknown field changed params: %v", p)
	}
	if got := p.Get(Field(42)); got != 0 {
		t.Errorf("Unknown field should read as 0, got %d", got)
	}
}

func TestParseField(t *testing.T) {
	cases := map[string]Field{
		"lowH":  FieldLowH,
		"lowS":  FieldLowS,
		"lowV":  FieldLowV,
		"highH": FieldHighH,
		"highS": FieldHighS,
		"highV": FieldHighV,
		"LowH":  FieldLowH,
		"HighV": FieldHighV,
	}
	for name, expected := range cases {
		f, err := ParseField(name)
		if err != nil {
			t.Errorf("ParseField(%q) returned error: %v", name, err)
			continue
		}
		if f != expected {
			t.Errorf("ParseField(%q): expected %s, got %s", name, expected, f)
		}
	}

	if _, err := ParseField("midH"); err == nil {
		t.Error("Expected error for unknown field name")
	}
}

func TestFieldMax(t *testing.T) {
	for _, f := range Fields {
		expected := 255
		if f == FieldLowH || f == FieldHighH {
			expected = 179
		}
		if f.Max() != expected {
			t.Errorf("Field %s: expected max %d, got %d", f, expected, f.Max())
		}
	}
}

func TestParamsBounds(t *testing.T) {
	p := Params{LowH: 1, LowS: 2, LowV: 3, HighH: 4, HighS: 5, HighV: 6}
	lower := p.Lower()
	upper := p.Upper()
	if lower.Val1 != 1 || lower.Val2 != 2 || lower.Val3 != 3 {
		t.Errorf("Unexpected lower bound %v", lower)
	}
	if upper.Val1 != 4 || upper.Val2 != 5 || upper.Val3 != 6 {
		t.Errorf("Unexpected upper bound %v", upper)
	}
}

func TestParamStoreSetField(t *testing.T) {
	store := NewParamStore(DefaultParams())

	if !store.SetField(FieldLowH, 50) {
		t.Error("SetField should report a change")
	}
	if store.SetField(FieldLowH, 50) {
		t.Error("SetField with the same value should report no change")
	}
	if store.SetField(Field(-1), 50) {
		t.Error("SetField with an unknown field should report no change")
	}

	expected := DefaultParams()
	expected.LowH = 50
	if got := store.Snapshot(); got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestParamStoreSetByName(t *testing.T) {
	store := NewParamStore(DefaultParams())
	if err := store.SetByName("highS", 200); err != nil {
		t.Fatalf("SetByName returned error: %v", err)
	}
	if got := store.Snapshot().HighS; got != 200 {
		t.Errorf("Expected highS 200, got %d", got)
	}
	if err := store.SetByName("bogus", 1); err == nil {
		t.Error("Expected error for unknown name")
	}
}

func TestParamStoreSnapshotIsACopy(t *testing.T) {
	store := NewParamStore(DefaultParams())
	snap := store.Snapshot()
	snap.LowV = 99
	if store.Snapshot().LowV != 0 {
		t.Error("Modifying a snapshot must not change the store")
	}

	store.SetField(FieldHighH, 10)
	if snap.HighH != 179 {
		t.Error("SetField must not change an earlier snapshot")
	}
}

func TestParamStoreConcurrentSnapshots(t *testing.T) {
	// The writer always sets all fields to the same value, one at a time.
	// A snapshot may lag behind but must be one of the states the writer produced.
	store := NewParamStore(Params{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for v := 1; v <= 200; v++ {
			for _, f := range Fields {
				store.SetField(f, v)
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		p := store.Snapshot()
		for _, f := range Fields {
			if d := p.LowH - p.Get(f); d < 0 || d > 1 {
				t.Fatalf("Snapshot fields diverged by more than one write step: %v", p)
			}
		}
	}
	wg.Wait()
}
