package registry

import "strconv"

// ConnectorAddressKey is the agent property under which a running JMX agent
// publishes its local connector address.
const ConnectorAddressKey = "com.sun.management.jmxremote.localConnectorAddress"

// Proc holds a discovered JVM. Everything except the connector address is
// fixed when the record is created; the address is set at most once.
type Proc struct {
	PID        int
	Display    string
	Command    string
	Attachable bool

	address string
}

// NewProc builds a record, deriving the display label from the command line.
func NewProc(pid int, command string, attachable bool, address string) *Proc {
	return &Proc{
		PID:        pid,
		Display:    DisplayName(command),
		Command:    command,
		Attachable: attachable,
		address:    address,
	}
}

// fallbackProc is the record used when nothing but the pid is known.
func fallbackProc(pid int) *Proc {
	return NewProc(pid, strconv.Itoa(pid), false, "")
}

// Address returns the local connector address if the management agent is known to be running.
func (p *Proc) Address() (string, bool) {
	return p.address, p.address != ""
}

// Manageable reports whether the connector address is known.
func (p *Proc) Manageable() bool {
	return p.address != ""
}

// setAddress stores the connector address unless one is already present.
func (p *Proc) setAddress(addr string) bool {
	if p.address != "" || addr == "" {
		return false
	}
	p.address = addr
	return true
}

// AdoptAddress copies a connector address learned elsewhere (for example from an
// earlier snapshot of the same process) onto a record that has none yet.
// It returns false if the record already had an address or addr is empty.
func (p *Proc) AdoptAddress(addr string) bool {
	return p.setAddress(addr)
}

func (p *Proc) String() string {
	return p.Command
}
