package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"jvmproc/internal/attach"
	"jvmproc/internal/config"
	"jvmproc/internal/hsperf"
	"jvmproc/internal/registry"
)

const shutdownGrace = 2 * time.Second

// Server owns the UNIX listener, the gRPC server and the refresh loop.
type Server struct {
	ln      net.Listener
	path    string
	grpc    *grpc.Server
	metrics *http.Server
	cancel  context.CancelFunc
	done    chan struct{}
}

// ResolveProfile turns the configured profile name into a registry profile,
// probing the temp directory for "auto".
func ResolveProfile(cfg config.Config) (registry.Profile, error) {
	if cfg.Profile == "" || cfg.Profile == "auto" {
		return attach.DetectProfile(cfg.TmpDir), nil
	}
	return registry.ParseProfile(cfg.Profile)
}

// NewRegistry wires the host's passive source and attach transport into a registry.
func NewRegistry(cfg config.Config, onDegrade func(registry.Degraded)) (*registry.Registry, error) {
	profile, err := ResolveProfile(cfg)
	if err != nil {
		return nil, err
	}
	var passive registry.PassiveSource
	if profile == registry.Standard {
		passive = hsperf.New(cfg.TmpDir)
	}
	return registry.New(registry.Options{
		Profile: profile,
		Passive: passive,
		Attach: attach.New(attach.Options{
			TmpDir:  cfg.TmpDir,
			Timeout: cfg.AttachTimeout,
			Profile: profile,
		}),
		ProbeTimeout: cfg.AttachTimeout,
		Concurrency:  cfg.ProbeConcurrency,
		OnDegrade:    onDegrade,
	})
}

// Close stops the server and unlinks the socket
func (s *Server) Close() error {
	s.cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownGrace):
		s.grpc.Stop()
	}
	<-s.done

	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.metrics.Shutdown(ctx); err != nil {
			log.Printf("metrics server shutdown: %v", err)
		}
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return RemovePID()
}

// StartDaemon loads the configuration, binds the UNIX socket and starts
// serving the registry.
func StartDaemon(configPath string) (*Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	m := newMetrics()
	reg, err := NewRegistry(cfg, func(d registry.Degraded) {
		m.observeDegraded(d)
		if d.PID < 0 {
			log.Printf("%s source unavailable: %v", d.Source, d.Err)
			return
		}
		log.Printf("%s probe of pid %d degraded: %v", d.Source, d.PID, d.Err)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("transport profile %s, tmp dir %s", reg.Profile(), cfg.TmpDir)

	if err := EnsureRuntimeDir(); err != nil {
		return nil, err
	}
	path := SocketPath()

	// If stale socket file exists but daemon is not running, remove it
	if _, err := os.Stat(path); err == nil {
		if IsRunning() {
			return nil, fmt.Errorf("daemon already running on %s", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, err
	}

	svc := newService(reg, m)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ln:     ln,
		path:   path,
		grpc:   grpc.NewServer(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	RegisterJVMProcServer(s.grpc, svc)

	if err := WritePID(os.Getpid()); err != nil {
		cancel()
		ln.Close()
		os.Remove(path)
		return nil, err
	}

	go func() {
		if err := s.grpc.Serve(ln); err != nil {
			log.Printf("grpc server: %v", err)
		}
	}()
	go func() {
		defer close(s.done)
		svc.run(ctx, cfg.RefreshInterval)
	}()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.handler())
		s.metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
	}
	return s, nil
}

// StopRunningDaemon sends a termination signal to the currently running daemon if any.
func StopRunningDaemon(force bool) error {
	pid, err := RunningPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning() {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", PIDPath())
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(proc, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(3 * time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(proc, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(2 * time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(proc *os.Process, sig syscall.Signal) error {
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = RemovePID()
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning() {
			_ = RemovePID()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
