package attach

import (
	"github.com/magiconair/properties"
)

// parseProperties decodes a Java properties payload as written by
// Properties.store, without ${} expansion.
func parseProperties(buf []byte) (map[string]string, error) {
	l := &properties.Loader{Encoding: properties.ISO_8859_1, DisableExpansion: true}
	p, err := l.LoadBytes(buf)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}
