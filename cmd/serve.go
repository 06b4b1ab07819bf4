package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/scalelog/internal/config"
	"github.com/theirongolddev/scalelog/internal/daemon"
	"github.com/theirongolddev/scalelog/internal/logger"
	"github.com/theirongolddev/scalelog/internal/metrics"
	"github.com/theirongolddev/scalelog/internal/model"
)

type serveRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Storage   string    `json:"storage"`
}

var (
	flagServeAddr         string
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeVerbose      bool
	flagServeNoWatch      bool
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"daemon"},
	Short:   "Run the local HTTP API with a live event stream",
	RunE:    runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "scalelogd.pid")
	defaultLog := filepath.Join(config.DataDir(), "scalelogd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config, 127.0.0.1:8765)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the daemon as a background process")
	serveCmd.Flags().BoolVarP(&flagServeVerbose, "verbose", "v", false, "Log every request")
	serveCmd.Flags().BoolVar(&flagServeNoWatch, "no-watch", false, "Do not reload the plan when the config file changes")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// serveAddr resolves --addr, then the config file.
func serveAddr(cfg config.Config) string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	if cfg.Daemon.Addr != "" {
		return cfg.Daemon.Addr
	}
	return "127.0.0.1:8765"
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid daemon launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagServeDetach {
		return startServeDetached(serveAddr(cfg))
	}
	return runServeForeground(cfg)
}

func startServeDetached(addr string) error {
	if err := runtimeFile(flagServePIDFile).ensureNotRunning(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", addr)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServeForeground(cfg config.Config) error {
	pidFile := runtimeFile(flagServePIDFile)
	if err := pidFile.ensureNotRunning(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	log, err := logger.New(flagServeVerbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	plan, err := cfg.Plan.Settings()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, name, err := openStore(ctx, cfg, labelsFor(cfg))
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	defer st.Close()

	addr := serveAddr(cfg)
	pid := os.Getpid()
	if err := pidFile.write(serveRuntimeState{PID: pid, Addr: addr, StartedAt: time.Now(), Storage: name}); err != nil {
		return err
	}
	defer pidFile.remove()

	dcfg := daemon.Config{
		Addr:         addr,
		EventsBuffer: flagServeEventsBuffer,
		StorageName:  name,
		StoreTimeout: storageTimeout,
	}
	if !flagServeNoWatch {
		dcfg.ConfigPath = config.ConfigPath()
	}
	svc := daemon.New(dcfg, st, plan, log, metrics.New())

	if !flagServeChild {
		fmt.Printf("  scalelog daemon listening on http://%s\n", addr)
		fmt.Printf("  Journal: %s\n", name)
		fmt.Printf("  Stop with: scalelog serve stop --pid-file %s\n", flagServePIDFile)
	}
	log.Info("daemon started", zap.Int("pid", pid), zap.String("pid_file", flagServePIDFile))

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	rt, err := runtimeFile(flagServePIDFile).read()
	if err != nil {
		fmt.Printf("  Daemon: not running (%v)\n", err)
		return nil
	}
	if !processAlive(rt.PID) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", rt.PID)
		return nil
	}

	addr := rt.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	fmt.Printf("  Daemon PID: %d\n", rt.PID)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status check
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Storage: %s\n", st.Storage)
	fmt.Printf("  Plan: %s, %.1f kg, -%.1f kg at %.2f kg/week\n",
		st.Plan.StartDate.Format(model.DateLayout), st.Plan.StartWeightKg, st.Plan.TargetLossKg, st.Plan.WeeklyLossKg)
	fmt.Printf("  Events: %d  Subscribers: %d\n", st.EventCount, st.SubscriberCount)
	if st.LastError != "" {
		at := ""
		if st.LastErrorAt != nil {
			at = " at " + st.LastErrorAt.Local().Format(time.RFC3339)
		}
		fmt.Printf("  Last error%s: %s\n", at, st.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pidFile := runtimeFile(flagServePIDFile)
	rt, err := pidFile.read()
	if err != nil {
		return errors.New("daemon is not running")
	}
	pid := rt.PID

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			pidFile.remove()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return out
}

// runtimeFile is the daemon's pid file. It holds the JSON runtime state so
// `serve status` can find the address without reading the config.
type runtimeFile string

func (f runtimeFile) write(st serveRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(string(f), append(data, '\n'), 0o600)
}

func (f runtimeFile) read() (serveRuntimeState, error) {
	var st serveRuntimeState
	data, err := os.ReadFile(string(f)) //nolint:gosec // pid path is configured by the local user
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil || st.PID <= 0 {
		return st, fmt.Errorf("invalid pid file %s", f)
	}
	return st, nil
}

func (f runtimeFile) remove() {
	_ = os.Remove(string(f))
}

// ensureNotRunning clears a stale pid file and fails if its process lives.
func (f runtimeFile) ensureNotRunning() error {
	st, err := f.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil && processAlive(st.PID) {
		return fmt.Errorf("daemon already running (pid %d)", st.PID)
	}
	f.remove()
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
