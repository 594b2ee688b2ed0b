package registry

import (
	"fmt"
	"strconv"
)

// MajorVersion extracts the feature release number from a java.version value.
// Legacy "1.N" strings report N.
func MajorVersion(v string) (int, error) {
	major, rest, ok := leadingInt(v)
	if !ok {
		return 0, fmt.Errorf("parse java version %q", v)
	}
	if major == 1 && len(rest) > 1 && rest[0] == '.' {
		if minor, _, ok := leadingInt(rest[1:]); ok {
			return minor, nil
		}
	}
	return major, nil
}

func leadingInt(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}
