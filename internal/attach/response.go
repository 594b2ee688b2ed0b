package attach

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jvmproc/internal/registry"
)

const returnCodePrefix = "return code: "

// splitResponse separates the status line of a HotSpot response from its body.
func splitResponse(resp string) (int, string, error) {
	line, body, _ := strings.Cut(resp, "\n")
	code, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, "", fmt.Errorf("malformed response status %q", line)
	}
	return code, body, nil
}

// commandResult maps a HotSpot response to its body or an error.
func commandResult(resp string) (string, error) {
	code, body, err := splitResponse(resp)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("command failed with code %d: %s", code, strings.TrimSpace(body))
	}
	return body, nil
}

// loadResult interprets the response of a "load" command. Older JVMs put the
// Agent_OnAttach result alone on the second line, 9 through 20 prefix it with
// "return code: ", and 21+ send only an error message.
func loadResult(resp string) error {
	code, body, err := splitResponse(resp)
	if err != nil {
		return fmt.Errorf("%w: %v", registry.ErrAgentLoad, err)
	}
	msg := strings.TrimSpace(body)
	if code != 0 {
		return fmt.Errorf("%w: code %d: %s", registry.ErrAgentLoad, code, msg)
	}
	if msg == "" {
		return nil
	}

	first, _, _ := strings.Cut(msg, "\n")
	if rest, ok := strings.CutPrefix(first, returnCodePrefix); ok {
		first = rest
	}
	if rc, err := strconv.Atoi(strings.TrimSpace(first)); err == nil {
		if rc == 0 {
			return nil
		}
		return fmt.Errorf("%w: Agent_OnAttach returned %d", registry.ErrAgentInit, rc)
	}
	if strings.Contains(msg, "Agent_OnAttach") {
		return fmt.Errorf("%w: %s", registry.ErrAgentInit, msg)
	}
	return fmt.Errorf("%w: %s", registry.ErrAgentLoad, msg)
}

// j9Result interprets an OpenJ9 reply.
func j9Result(resp string) error {
	switch {
	case strings.HasPrefix(resp, "ATTACH_ERR AgentInitializationException"):
		return fmt.Errorf("%w: %s", registry.ErrAgentInit, resp)
	case strings.HasPrefix(resp, "ATTACH_ERR"):
		return fmt.Errorf("%w: %s", registry.ErrAgentLoad, resp)
	}
	return nil
}

// procStatus holds the /proc/<pid>/status fields the handshake depends on.
type procStatus struct {
	UID, GID int
	// NSPID is the pid inside the innermost pid namespace.
	NSPID  int
	SigCgt uint64
}

const sigquitMask = 1 << 2

// catchesQuit reports whether the process installed a SIGQUIT handler, which
// every HotSpot JVM does unless started with -Xrs.
func (s procStatus) catchesQuit() bool {
	return s.SigCgt&sigquitMask != 0
}

func parseStatus(r io.Reader, pid int) (procStatus, error) {
	st := procStatus{UID: -1, GID: -1, NSPID: pid}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(val)
		if len(fields) == 0 {
			continue
		}
		switch key {
		case "Uid":
			st.UID = effectiveID(fields)
		case "Gid":
			st.GID = effectiveID(fields)
		case "NStgid":
			if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				st.NSPID = n
			}
		case "SigCgt":
			st.SigCgt, _ = strconv.ParseUint(fields[0], 16, 64)
		}
	}
	if err := sc.Err(); err != nil {
		return st, err
	}
	if st.UID < 0 || st.GID < 0 {
		return st, fmt.Errorf("no credentials in status of pid %d", pid)
	}
	return st, nil
}

// effectiveID picks the effective id out of a "real effective saved fs" row.
func effectiveID(fields []string) int {
	f := fields[0]
	if len(fields) > 1 {
		f = fields[1]
	}
	n, err := strconv.Atoi(f)
	if err != nil {
		return -1
	}
	return n
}

// request encodes a protocol 1 HotSpot command: version, command and exactly
// three arguments, each NUL-terminated.
func request(cmd string, args ...string) []byte {
	var b strings.Builder
	b.WriteString("1\x00")
	b.WriteString(cmd)
	b.WriteByte(0)
	for i := 0; i < 3; i++ {
		if i < len(args) {
			b.WriteString(args[i])
		}
		b.WriteByte(0)
	}
	return []byte(b.String())
}
