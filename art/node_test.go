package art

import "testing"

func TestContractualSizes(t *testing.T) {
	cases := []struct {
		name string
		got  int
		want int
	}{
		{"Header", HeaderSize, 16},
		{"Leaf0", Leaf0Size, 16},
		{"N4", N4Size, 52},
		{"N16", N16Size, 160},
		{"N48", N48Size, 656},
		{"N256", N256Size, 2064},
	}

	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestEncodeLeaf0RoundTrip(t *testing.T) {
	h := Header{Frequency: 7, PathLength: 3, Path: [7]byte{'a', 'b', 'c'}}
	raw := EncodeLeaf0(h)
	if len(raw) != Leaf0Size {
		t.Fatalf("expected %d bytes, got %d", Leaf0Size, len(raw))
	}

	got := ReadHeader(raw)
	if got.Kind != KindLeaf0 {
		t.Errorf("expected KindLeaf0, got %v", got.Kind)
	}
	if got.Frequency != 7 {
		t.Errorf("expected frequency 7, got %d", got.Frequency)
	}
	if got.PathLength != 3 || got.Path != h.Path {
		t.Errorf("path mismatch: got %v/%d", got.Path, got.PathLength)
	}
}

func TestEncodeVariantChooseN4LookupAndChildren(t *testing.T) {
	var children [256]Ref
	children['a'] = 100
	children['z'] = 200
	children['m'] = 300

	h := Header{Frequency: 0}
	raw := EncodeVariant(KindN4, h, children)
	if len(raw) != N4Size {
		t.Fatalf("expected %d bytes, got %d", N4Size, len(raw))
	}

	hdr := ReadHeader(raw)
	if hdr.NumChildren != 3 {
		t.Fatalf("expected 3 children, got %d", hdr.NumChildren)
	}

	if got := Lookup(KindN4, raw, 'a'); got != 100 {
		t.Errorf("lookup 'a': got %d, want 100", got)
	}
	if got := Lookup(KindN4, raw, 'm'); got != 300 {
		t.Errorf("lookup 'm': got %d, want 300", got)
	}
	if got := Lookup(KindN4, raw, 'q'); got != 0 {
		t.Errorf("lookup 'q': expected absent, got %d", got)
	}

	var gotKeys []byte
	for key := range Children(KindN4, raw) {
		gotKeys = append(gotKeys, key)
	}
	want := []byte{'a', 'm', 'z'}
	if len(gotKeys) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(gotKeys))
	}
	for i := range want {
		if gotKeys[i] != want[i] {
			t.Errorf("children not ascending: got %v, want %v", gotKeys, want)
		}
	}
}

func TestEncodeVariantN48AbsentSentinel(t *testing.T) {
	var children [256]Ref
	for i := 0; i < 20; i++ {
		children[i] = Ref(i + 1)
	}

	raw := EncodeVariant(KindN48, Header{}, children)
	if len(raw) != N48Size {
		t.Fatalf("expected %d bytes, got %d", N48Size, len(raw))
	}

	if got := Lookup(KindN48, raw, 250); got != 0 {
		t.Errorf("expected absent child to resolve to 0, got %d", got)
	}
	if got := Lookup(KindN48, raw, 5); got != 6 {
		t.Errorf("lookup 5: got %d, want 6", got)
	}
}

func TestEncodeVariantN256StructuralCopy(t *testing.T) {
	var children [256]Ref
	children[0] = 10
	children[255] = 20

	raw := EncodeVariant(KindN256, Header{}, children)
	if len(raw) != N256Size {
		t.Fatalf("expected %d bytes, got %d", N256Size, len(raw))
	}

	if got := Lookup(KindN256, raw, 0); got != 10 {
		t.Errorf("lookup 0: got %d, want 10", got)
	}
	if got := Lookup(KindN256, raw, 255); got != 20 {
		t.Errorf("lookup 255: got %d, want 20", got)
	}
	if got := Lookup(KindN256, raw, 128); got != 0 {
		t.Errorf("lookup 128: expected absent, got %d", got)
	}
}

func TestVariantForChildCount(t *testing.T) {
	cases := []struct {
		n    int
		want Kind
	}{
		{0, KindLeaf0},
		{1, KindN4},
		{4, KindN4},
		{5, KindN16},
		{16, KindN16},
		{17, KindN48},
		{48, KindN48},
		{49, KindN256},
		{256, KindN256},
	}

	for _, c := range cases {
		if got := VariantForChildCount(c.n); got != c.want {
			t.Errorf("VariantForChildCount(%d): got %v, want %v", c.n, got, c.want)
		}
	}
}
