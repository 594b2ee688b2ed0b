// Package hsperf reads the jvmstat performance data files that HotSpot JVMs
// publish under <tmp>/hsperfdata_<user>/<pid>.
package hsperf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	magic        = 0xcafec0c0
	prologueSize = 32
	entryHeader  = 20

	typeByte = 'B'
	typeLong = 'J'
)

var (
	errBadMagic     = errors.New("bad perf data magic")
	errInaccessible = errors.New("perf data not yet accessible")
	errTruncated    = errors.New("truncated perf data")
)

// PerfData holds the string and long counters of one perf data buffer.
type PerfData struct {
	Major, Minor int
	strings      map[string]string
	longs        map[string]int64
}

// String returns the named string counter.
func (d *PerfData) String(name string) (string, bool) {
	v, ok := d.strings[name]
	return v, ok
}

// long returns the named long counter.
func (d *PerfData) long(name string) (int64, bool) {
	v, ok := d.longs[name]
	return v, ok
}

// Parse decodes a version 2 perf data buffer. Values are copied out, so buf
// may be released afterwards.
func Parse(buf []byte) (*PerfData, error) {
	if len(buf) < prologueSize {
		return nil, errTruncated
	}
	if binary.BigEndian.Uint32(buf[0:4]) != magic {
		return nil, errBadMagic
	}

	var order binary.ByteOrder = binary.BigEndian
	if buf[4] == 1 {
		order = binary.LittleEndian
	}
	d := &PerfData{
		Major:   int(buf[5]),
		Minor:   int(buf[6]),
		strings: map[string]string{},
		longs:   map[string]int64{},
	}
	if d.Major != 2 {
		return nil, fmt.Errorf("unsupported perf data version %d.%d", d.Major, d.Minor)
	}
	if buf[7] == 0 {
		return nil, errInaccessible
	}

	used := int(order.Uint32(buf[8:12]))
	if used > len(buf) || used < prologueSize {
		used = len(buf)
	}
	buf = buf[:used]

	off := int(order.Uint32(buf[24:28]))
	count := int(order.Uint32(buf[28:32]))
	for i := 0; i < count; i++ {
		if off+entryHeader > len(buf) {
			return nil, errTruncated
		}
		e := buf[off:]
		length := int(order.Uint32(e[0:4]))
		if length < entryHeader || off+length > len(buf) {
			return nil, errTruncated
		}
		e = e[:length]

		nameOff := int(order.Uint32(e[4:8]))
		vecLen := int(order.Uint32(e[8:12]))
		dataType := e[12]
		dataOff := int(order.Uint32(e[16:20]))
		if nameOff >= length || dataOff > length {
			return nil, errTruncated
		}
		name := cstring(e[nameOff:])

		switch {
		case dataType == typeByte && vecLen > 0:
			end := dataOff + vecLen
			if end > length {
				return nil, errTruncated
			}
			d.strings[name] = cstring(e[dataOff:end])
		case dataType == typeLong && vecLen == 0:
			if dataOff+8 > length {
				return nil, errTruncated
			}
			d.longs[name] = int64(order.Uint64(e[dataOff : dataOff+8]))
		}
		off += length
	}
	return d, nil
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
