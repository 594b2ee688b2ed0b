package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	agentJar     = "management-agent.jar"
	agentOptions = "com.sun.management.jmxremote"
	// JVMs from this release on start the local agent with a built-in command.
	builtinAgentSince = 8
)

// EnsureEndpoint makes sure the JMX management agent is running in the JVM
// described by p and stores its connector address on p. It is a no-op for
// records that already have one.
func (r *Registry) EnsureEndpoint(ctx context.Context, p *Proc) error {
	if p.Manageable() {
		return nil
	}
	if !p.Attachable {
		return fmt.Errorf("pid %d: %w", p.PID, ErrNotAttachable)
	}

	h, err := r.opts.Attach.Attach(ctx, strconv.Itoa(p.PID))
	if err != nil {
		return bootstrapErr(p.PID, StepAttach, err)
	}
	defer r.opts.Attach.Detach(h)

	if err := r.startAgent(ctx, p.PID, h); err != nil {
		return err
	}

	addr, err := r.connectorAddress(ctx, h)
	if err != nil {
		return bootstrapErr(p.PID, StepInit, err)
	}
	p.setAddress(addr)
	return nil
}

func (r *Registry) startAgent(ctx context.Context, pid int, h Handle) error {
	sys, err := r.opts.Attach.SystemProperties(ctx, h)
	if err != nil {
		return bootstrapErr(pid, StepAttach, fmt.Errorf("read system properties: %w", err))
	}
	major, err := MajorVersion(sys["java.version"])
	if err != nil {
		return bootstrapErr(pid, StepAttach, err)
	}

	if major >= builtinAgentSince {
		if err := r.opts.Attach.StartLocalManagementAgent(ctx, h); err != nil {
			return bootstrapErr(pid, StepInit, err)
		}
		return nil
	}

	jar, err := locateAgent(sys["java.home"])
	if err != nil {
		return bootstrapErr(pid, StepArtifact, err)
	}
	if err := r.opts.Attach.LoadAgent(ctx, h, jar, agentOptions); err != nil {
		if errors.Is(err, ErrAgentInit) {
			return bootstrapErr(pid, StepInit, err)
		}
		return bootstrapErr(pid, StepLoad, err)
	}
	return nil
}

// connectorAddress reads the published address. Alternate-vendor JVMs publish
// it among the system properties.
func (r *Registry) connectorAddress(ctx context.Context, h Handle) (string, error) {
	read := r.opts.Attach.AgentProperties
	if r.opts.Profile == AlternateVendor {
		read = r.opts.Attach.SystemProperties
	}
	props, err := read(ctx, h)
	if err != nil {
		return "", err
	}
	addr := props[ConnectorAddressKey]
	if addr == "" {
		return "", ErrNoConnectorAddress
	}
	return addr, nil
}

// locateAgent finds the agent jar under a java home, preferring the JRE layout.
func locateAgent(home string) (string, error) {
	if home == "" {
		return "", errors.New("java.home is not set")
	}
	for _, rel := range []string{
		filepath.Join("jre", "lib", agentJar),
		filepath.Join("lib", agentJar),
	} {
		path := filepath.Join(home, rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
		return path, nil
	}
	return "", fmt.Errorf("%s not found under %s", agentJar, home)
}
