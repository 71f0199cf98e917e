// BYZRA ⸻ cmd/tempora/daemon.go
// daemon on|off|status with a PID file

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"tempora/internal/config"
	"tempora/internal/daemon"
	"tempora/internal/store"
	"tempora/internal/util"
)

func handleDaemonCommand(args []string) {
	const line = "tempora daemon [on|off|status]"
	if len(args) < 1 {
		fmt.Println(util.LBL.Render("[X] Daemon mode requires a subcommand"))
		usage(line)
	}

	pidFile := filepath.Join(config.Dir(), "daemon.pid")

	switch subcommand := args[0]; subcommand {
	case "on", "start":
		startDaemon(pidFile)
	case "off", "stop":
		stopDaemon(pidFile)
	case "status":
		daemonStatus(pidFile)
	default:
		fmt.Println(util.LBL.Render("[X] Unknown daemon command: " + subcommand))
		usage(line)
	}
}

// runs in the foreground until SIGINT or SIGTERM
func startDaemon(pidFile string) {
	if _, running := runningPID(pidFile); running {
		fmt.Println(util.NSH.Render("[!] Daemon is already running"))
		os.Exit(0)
	}

	fmt.Println(util.NSH.Render("[~] Starting daemon..."))

	d, err := daemon.NewDaemon(loadConfig())
	if err != nil {
		fail("Failed to create daemon: " + err.Error())
	}

	if err := d.Start(); err != nil {
		d.Stop()
		fail("Failed to start daemon: " + err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(pidFile), 0755); err != nil {
		fmt.Println(util.LBL.Render("[!] Could not create daemon directory"))
	}
	pid := strconv.Itoa(os.Getpid())
	if err := util.WriteFileAtomic(pidFile, []byte(pid), 0644); err != nil {
		fmt.Println(util.LBL.Render("[!] Could not write PID file"))
	}
	defer os.Remove(pidFile)

	status := d.Status()
	fmt.Println(util.NSH.Render("[✓] Daemon started (PID " + pid + ")"))
	for _, dir := range status.WatchedDirs {
		fmt.Printf(" %s %s\n", util.Ornament, dir)
	}
	fmt.Println(util.SUB.Render("Records: " + status.StorePath))
	fmt.Println(util.SUB.Render("Log: " + status.LogPath))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	fmt.Println(util.NSH.Render("[~] Stopping daemon..."))
	if err := d.Stop(); err != nil {
		fmt.Println(util.LBL.Render("[!] " + err.Error()))
	}
	fmt.Println(util.NSH.Render("[✓] Daemon stopped"))
}

func stopDaemon(pidFile string) {
	pid, running := runningPID(pidFile)
	if !running {
		// stale file from a crashed daemon
		os.Remove(pidFile)
		fmt.Println(util.NSH.Render("[!] Daemon is not running"))
		os.Exit(0)
	}

	fmt.Println(util.NSH.Render(fmt.Sprintf("[~] Stopping daemon (PID %d)...", pid)))

	proc, err := os.FindProcess(pid)
	if err != nil {
		fail("Could not find daemon process: " + err.Error())
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		fail("Could not signal daemon: " + err.Error())
	}

	fmt.Println(util.NSH.Render("[✓] Stop signal sent"))
}

func daemonStatus(pidFile string) {
	pid, running := runningPID(pidFile)
	if !running {
		fmt.Println(util.NSH.Render("[...] Daemon is not running"))
		return
	}
	fmt.Println(util.NSH.Render(fmt.Sprintf("[...] Daemon is running (PID %d)", pid)))

	cfg := loadConfig()
	for _, dir := range cfg.Watch.Paths {
		fmt.Printf(" %s %s\n", util.Ornament, dir)
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return
	}
	defer s.Close()
	if records, err := s.Load(context.Background()); err == nil {
		fmt.Println(util.SUB.Render(fmt.Sprintf("Records: %d in %s", len(records), cfg.Store.Path)))
	}
}

// pid from the file, and whether that process is alive
func runningPID(pidFile string) (int, bool) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	return pid, proc.Signal(syscall.Signal(0)) == nil
}
