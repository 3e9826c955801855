package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"pitchlog/audio"
	"pitchlog/extract"
	"pitchlog/log"
	"pitchlog/notify"
	"pitchlog/recorder"
	"pitchlog/store"
	"pitchlog/workflow"
)

var version = "dev"

// app bundles the core services the TUI talks to. The workflow is only
// touched from the Bubble Tea event loop; the store and queue carry
// their own locks.
type app struct {
	store    *store.Store
	queue    *notify.Queue
	wf       *workflow.Workflow
	pipeline *extract.Pipeline
	recorder *recorder.Recorder

	provider string
	device   string
	dataPath string
}

func (a *app) statusLine() string {
	return fmt.Sprintf("[%s] mic: %s · %s · pitchlog %s",
		a.provider, a.device, a.dataPath, version)
}

func (a *app) copyCSV() {
	var buf strings.Builder
	if err := store.WriteCSV(&buf, a.store.List()); err != nil {
		log.Errorf("export: %v", err)
		a.queue.Push("failed to export CSV", notify.Error)
		return
	}
	if err := clipboard.WriteAll(buf.String()); err != nil {
		log.Errorf("export: clipboard: %v", err)
		a.queue.Push("failed to copy to clipboard", notify.Error)
		return
	}
	a.queue.Push("CSV copied to clipboard", notify.Success)
}

// resolveDataPath picks the match data file: flag, then env override,
// then the OS config directory.
func resolveDataPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if p := os.Getenv("PITCHLOG_DATA_PATH"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "pitchlog", "matches.json"), nil
}

func runExport(dataFlag string) {
	dataPath, err := resolveDataPath(dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st := store.New(store.NewFileMedium(dataPath))
	st.Load()
	if err := store.WriteCSV(os.Stdout, st.List()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "export" {
		dataFlag := ""
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		fs.StringVar(&dataFlag, "data", "", "Match data file path")
		fs.Parse(os.Args[2:])
		runExport(dataFlag)
		return
	}

	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	dataFlag := flag.String("data", "", "Match data file path (default: OS config location)")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location, use ./ for current dir)")
	timeoutFlag := flag.Duration("timeout", extract.DefaultTimeout, "Extraction call timeout")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("pitchlog %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n",
			time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	dataPath, err := resolveDataPath(*dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	svc, err := extract.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.SessionStart(svc.Name())

	st := store.New(store.NewFileMedium(dataPath))
	st.Load()

	queue := notify.New(notify.DefaultTTL)
	queue.OnChange(func() { tuiSend(notifyChangedMsg{}) })

	pipeline := extract.NewPipeline(svc, queue, *timeoutFlag)
	wf := workflow.New(st, queue)

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Fprintf(os.Stderr, "Warning: device %q not found, using default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
			selectedDevice = nil
		}
	}

	a := &app{
		store:    st,
		queue:    queue,
		wf:       wf,
		pipeline: pipeline,
		provider: svc.Name(),
		dataPath: dataPath,
	}
	a.device = "system default"
	if selectedDevice != nil {
		a.device = selectedDevice.Name
	}
	a.recorder = recorder.New(ctx, selectedDevice, queue, tuiSink{}, a.handoffAudio)

	// First capture should not pay connection setup on top of inference.
	if g, ok := svc.(*extract.Gemini); ok {
		g.Warm()
	}

	p := NewTUIProgram(a)
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()

	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.SessionEnd(len(st.List()))
}
