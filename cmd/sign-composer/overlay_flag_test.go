package main

import "testing"

func TestParseOverlaySpec(t *testing.T) {
	cases := []struct {
		in   string
		want overlaySpec
	}{
		{"sig.png", overlaySpec{Path: "sig.png"}},
		{"sig.png@420,980", overlaySpec{Path: "sig.png", X: 420, Y: 980, HasPos: true}},
		{"a/b@c.png@10.5, 20,0.6", overlaySpec{Path: "a/b@c.png", X: 10.5, Y: 20, HasPos: true, Scale: 0.6, HasScale: true}},
	}
	for _, tc := range cases {
		got, err := parseOverlaySpec(tc.in)
		if err != nil {
			t.Errorf("parseOverlaySpec(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseOverlaySpec(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseOverlaySpecErrors(t *testing.T) {
	for _, in := range []string{"@1,2", "sig.png@1", "sig.png@x,2", "sig.png@1,2,3,4"} {
		if _, err := parseOverlaySpec(in); err == nil {
			t.Errorf("Expected error for %q", in)
		}
	}
}

func TestOverlayFlags(t *testing.T) {
	var f overlayFlags
	if err := f.Set("a.png"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("b.png@1,2"); err != nil {
		t.Fatal(err)
	}
	if f.String() != "a.png,b.png" {
		t.Errorf("Unexpected String() %q", f.String())
	}
}
