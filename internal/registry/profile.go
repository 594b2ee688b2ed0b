package registry

import (
	"fmt"
	"strings"
)

// Profile selects the attach semantics of the JVMs on this host.
type Profile int

const (
	// Standard is HotSpot-style attach with a jvmstat perf data source.
	Standard Profile = iota
	// AlternateVendor is OpenJ9-style attach: no perf data source, and the
	// connector address is published as a system property.
	AlternateVendor
)

func (p Profile) String() string {
	switch p {
	case Standard:
		return "standard"
	case AlternateVendor:
		return "alternate"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// ParseProfile accepts "standard" or "alternate" (case-insensitive).
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "hotspot":
		return Standard, nil
	case "alternate", "openj9", "j9":
		return AlternateVendor, nil
	default:
		return Standard, fmt.Errorf("unknown transport profile %q", s)
	}
}
