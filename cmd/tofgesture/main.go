package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/tofgesture/internal/app"
	"github.com/ayusman/tofgesture/internal/capture"
	"github.com/ayusman/tofgesture/internal/config"
	"github.com/ayusman/tofgesture/internal/server"
	"github.com/ayusman/tofgesture/internal/store"
	"github.com/ayusman/tofgesture/internal/tof"
	"github.com/ayusman/tofgesture/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to the JSON config file (default ~/.tofgesture/config.json if present)")
	addr := flag.String("addr", "", "HTTP listen address, overrides the config")
	dbPath := flag.String("db", "", "SQLite database path, overrides the config")
	replay := flag.String("replay", "", "replay a recorded CSV instead of reading the sensor")
	loop := flag.Bool("loop", false, "loop the replayed recording")
	record := flag.String("record", "", "append every frame read to this CSV file")
	useTray := flag.Bool("tray", false, "show a system tray menu")
	flag.Parse()

	fmt.Println("tofgesture - ToF Hand Gesture Recognition")

	dataDir, err := dataDir()
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg, err := loadConfig(*configPath, dataDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if cfg.EventRetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.EventRetentionDays)
		n, err := st.Events().DeleteBefore(cutoff)
		if err != nil {
			log.Printf("Failed to prune events: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d gesture events older than %d days", n, cfg.EventRetentionDays)
		}
	}

	source, err := openSource(cfg, *replay, *loop)
	if err != nil {
		log.Fatalf("Failed to open capture source: %v", err)
	}

	application, err := app.New(app.Config{
		Store:             st,
		PluginDir:         cfg.PluginDir,
		Source:            source,
		Params:            cfg.Recognizer,
		Sensor:            cfg.Sensor,
		Orientation:       cfg.Capture.Orientation,
		IdleFPS:           cfg.Capture.IdleFPS,
		ActiveFPS:         cfg.Capture.ActiveFPS,
		IdleTimeoutMs:     cfg.Capture.IdleTimeoutMs,
		ActivityThreshold: cfg.Capture.ActivityThresholdPct,
		ActivityDiffMm:    cfg.Capture.ActivityDiffMm,
		PluginTimeoutMs:   cfg.PluginTimeoutMs,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	for _, p := range application.PluginManager().List() {
		log.Printf("Loaded plugin %s %s", p.Manifest.Name, p.Manifest.Version)
	}

	var recorder *bufio.Writer
	if *record != "" {
		f, err := os.OpenFile(*record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open recording: %v", err)
		}
		defer f.Close()
		recorder = bufio.NewWriter(f)
		application.OnFrame(func(frame tof.DepthFrame) {
			if err := capture.AppendFrame(recorder, frame); err != nil {
				log.Printf("Recording error: %v", err)
			}
		})
	}

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:         webDir,
		Store:             st,
		App:               application,
		PreviewMaxRangeMm: cfg.PreviewMaxRangeMm,
	})
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv}

	var t *tray.Tray
	if *useTray {
		t = tray.New(true)
		application.OnResult(t.Observe)
		t.OnToggle(application.SetEnabled)
		t.OnSettings(func() { openBrowser("http://" + cfg.Addr) })
	}

	application.SetEnabled(true)
	if source != nil {
		if err := application.Start(); err != nil {
			log.Fatalf("Failed to start pipeline: %v", err)
		}
	} else {
		log.Println("No sensor port configured and no -replay given; serving the API only")
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if t != nil {
		t.OnQuit(stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		// The tray has to own the main thread on macOS.
		t.Run()
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	application.Close()

	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			log.Printf("Recording flush error: %v", err)
		}
	}
}

// dataDir returns ~/.tofgesture, creating it if needed.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, ".tofgesture")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// loadConfig reads path, or the data directory's config.json when path is
// empty and that file exists, and fills unset paths from the data directory.
func loadConfig(path, dataDir string) (config.Config, error) {
	cfg := config.Default()
	if path == "" {
		candidate := filepath.Join(dataDir, "config.json")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
		log.Printf("Loaded config from %s", path)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, "tofgesture.db")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(dataDir, "plugins")
	}
	return cfg, nil
}

// openSource returns a replay source when replay is set, otherwise the
// configured serial port. It returns nil when neither is available.
func openSource(cfg config.Config, replay string, loop bool) (capture.Source, error) {
	if replay != "" {
		frames, err := capture.ReadRecording(replay)
		if err != nil {
			return nil, err
		}
		log.Printf("Replaying %d frames from %s", len(frames), replay)
		return capture.NewMockSource(frames, loop), nil
	}
	if cfg.Capture.Serial.Port == "" {
		return nil, nil
	}
	return capture.NewSerialSource(cfg.Capture.Serial.Port, cfg.Capture.Serial.PortOptions()), nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
