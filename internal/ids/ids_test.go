package ids

import "testing"

func TestNewIsValidAndOrdered(t *testing.T) {
	a := New()
	b := New()
	if !Valid(a) || !Valid(b) {
		t.Fatalf("generated ids must parse: %q %q", a, b)
	}
	if a >= b {
		t.Fatalf("ids not monotonic: %q >= %q", a, b)
	}
	if Valid("") || Valid("not-a-ulid") {
		t.Fatal("garbage accepted as ULID")
	}
}
