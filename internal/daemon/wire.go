package daemon

import (
	"google.golang.org/protobuf/types/known/structpb"

	"jvmproc/internal/registry"
)

// Struct field names of a process record on the wire.
const (
	FieldPID        = "pid"
	FieldDisplay    = "display"
	FieldCommand    = "command"
	FieldAttachable = "attachable"
	FieldAddress    = "address"
)

func encodeProc(p *registry.Proc) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldPID:        structpb.NewNumberValue(float64(p.PID)),
		FieldDisplay:    structpb.NewStringValue(p.Display),
		FieldCommand:    structpb.NewStringValue(p.Command),
		FieldAttachable: structpb.NewBoolValue(p.Attachable),
	}
	if addr, ok := p.Address(); ok {
		fields[FieldAddress] = structpb.NewStringValue(addr)
	}
	return &structpb.Struct{Fields: fields}
}

func encodeProcs(ps []*registry.Proc) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(ps))}
	for _, p := range ps {
		out.Values = append(out.Values, structpb.NewStructValue(encodeProc(p)))
	}
	return out
}
