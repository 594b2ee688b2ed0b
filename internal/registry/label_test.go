package registry

import "testing"

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"/opt/app/server.jar --port 8080": "server.jar --port 8080",
		"/opt/app/server.jar":             "server.jar",
		"org.example.Main arg1":           "org.example.Main arg1",
		"12345":                           "12345",
		"":                                "",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMajorVersion(t *testing.T) {
	cases := map[string]int{
		"1.8.0_302": 8,
		"1.6.0":     6,
		"11.0.2":    11,
		"17":        17,
		"9-ea":      9,
		"1":         1,
	}
	for in, want := range cases {
		got, err := MajorVersion(in)
		if err != nil || got != want {
			t.Fatalf("MajorVersion(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := MajorVersion("ea"); err == nil {
		t.Fatalf("expected error for non-numeric version")
	}
}

func TestParseProfile(t *testing.T) {
	if p, err := ParseProfile("OpenJ9"); err != nil || p != AlternateVendor {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p, err := ParseProfile("hotspot"); err != nil || p != Standard {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if _, err := ParseProfile("bogus"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAdoptAddressIsSetOnce(t *testing.T) {
	p := NewProc(1, "x", true, "")
	if !p.AdoptAddress("a") || p.AdoptAddress("b") {
		t.Fatalf("address should be set exactly once")
	}
	if addr, _ := p.Address(); addr != "a" {
		t.Fatalf("unexpected address %q", addr)
	}
}
