package attach

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"jvmproc/internal/registry"
)

// List enumerates attach candidates: java processes for the standard
// profile, attach directories for the alternate one.
func (t *Transport) List(ctx context.Context) ([]registry.Descriptor, error) {
	if t.opts.Profile == registry.AlternateVendor {
		return listJ9(t.opts.TmpDir)
	}
	return listJava(ctx)
}

func listJava(ctx context.Context) ([]registry.Descriptor, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(procs, func(i, j int) bool { return procs[i].Pid < procs[j].Pid })

	self := int32(os.Getpid())
	var out []registry.Descriptor
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.HasPrefix(name, "java") {
			continue
		}
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			// the process exited or is not ours to inspect
			continue
		}
		out = append(out, registry.Descriptor{
			ID:          strconv.Itoa(int(p.Pid)),
			DisplayName: javaCommand(args),
		})
	}
	return out, nil
}

// launcher options that consume the following argument
var argOptions = map[string]bool{
	"-cp":                   true,
	"-classpath":            true,
	"--class-path":          true,
	"-p":                    true,
	"--module-path":         true,
	"--upgrade-module-path": true,
	"--add-modules":         true,
	"--add-opens":           true,
	"--add-exports":         true,
	"--add-reads":           true,
	"--limit-modules":       true,
}

// javaCommand rebuilds what the JVM reports as sun.rt.javaCommand: the main
// class, jar or module followed by the application arguments.
func javaCommand(args []string) string {
	if len(args) == 0 {
		return ""
	}
	for i := 1; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-jar" || a == "-m" || a == "--module":
			if i+1 < len(args) {
				return strings.Join(args[i+1:], " ")
			}
			return ""
		case strings.HasPrefix(a, "--module="):
			return strings.Join(append([]string{strings.TrimPrefix(a, "--module=")}, args[i+1:]...), " ")
		case argOptions[a]:
			i++
		case strings.HasPrefix(a, "-"):
		default:
			return strings.Join(args[i:], " ")
		}
	}
	return ""
}

func listJ9(tmpDir string) ([]registry.Descriptor, error) {
	root := filepath.Join(tmpDir, j9Dir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []registry.Descriptor
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info := filepath.Join(root, e.Name(), "attachInfo")
		buf, err := os.ReadFile(info)
		if err != nil {
			continue
		}
		props, err := parseProperties(buf)
		if err != nil {
			continue
		}
		name := props["displayName"]
		if name == "" {
			name = e.Name()
		}
		out = append(out, registry.Descriptor{ID: e.Name(), DisplayName: name})
	}
	return out, nil
}
