package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gestellence/gestellence/internal/app"
	"github.com/gestellence/gestellence/internal/config"
	"github.com/gestellence/gestellence/internal/detector"
	"github.com/gestellence/gestellence/internal/server"
	"github.com/gestellence/gestellence/internal/store"
	"github.com/gestellence/gestellence/internal/tray"
)

// flags override values from the config file when set explicitly.
type flags struct {
	config       string
	source       string
	fps          int
	addr         string
	dataDir      string
	staticDir    string
	tray         bool
	noMirror     bool
	discardStale bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "path to a JSON config file")
	flag.StringVar(&f.source, "source", "", "camera index or video file/stream URL")
	flag.IntVar(&f.fps, "fps", 0, "capture frame rate")
	flag.StringVar(&f.addr, "addr", "", "viewer listen address")
	flag.StringVar(&f.dataDir, "data", "", "data directory for the database and model")
	flag.StringVar(&f.staticDir, "web", "", "directory with the viewer's static files")
	flag.BoolVar(&f.tray, "tray", false, "show a system tray menu")
	flag.BoolVar(&f.noMirror, "no-mirror", false, "do not mirror frames horizontally")
	flag.BoolVar(&f.discardStale, "discard-stale", false, "ignore detections older than the one shown")
	flag.Parse()

	fmt.Println("gestellence - hand gesture recognition")

	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("gestellence: %v", err)
	}
}

// loadConfig builds the configuration from defaults, the optional file and
// the flags that were set on the command line.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		loaded, err := config.LoadFromFile(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "source":
			cfg.Camera.Source = f.source
		case "fps":
			cfg.Camera.FPS = f.fps
		case "addr":
			cfg.Viewer.Addr = f.addr
		case "data":
			cfg.DataDir = f.dataDir
		case "web":
			cfg.Viewer.StaticDir = f.staticDir
		case "tray":
			cfg.Tray = f.tray
		case "no-mirror":
			cfg.Pipeline.Mirror = !f.noMirror
		case "discard-stale":
			cfg.Pipeline.DiscardStale = f.discardStale
		}
	})

	if cfg.Viewer.StaticDir == "" {
		cfg.Viewer.StaticDir = findWebDir(cfg.DataDir)
	}

	return cfg, cfg.Validate()
}

func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := detector.EnsureModel(ctx, cfg.ModelPath(), cfg.Detector.ModelURL); err != nil {
		log.Printf("Hand landmark model unavailable: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:       st,
		Camera:      cfg.CaptureOptions(),
		Detector:    cfg.DetectorOptions(),
		Pipeline:    cfg.PipelineOptions(),
		JPEGQuality: cfg.Viewer.JPEGQuality,
	})

	hub := server.NewHub()
	a.OnGesture(func(c app.Change) {
		if err := hub.Publish(c); err != nil {
			log.Printf("Failed to publish gesture change: %v", err)
		}
	})

	if cfg.Viewer.StaticDir != "" {
		log.Printf("Serving static files from: %s", cfg.Viewer.StaticDir)
	}
	srv := server.New(server.Config{
		StaticDir: cfg.Viewer.StaticDir,
		Store:     st,
		Frames:    a,
		Status:    a,
		Stats:     a,
		Hub:       hub,
	})

	if err := a.Start(); err != nil {
		a.Close()
		return fmt.Errorf("start capture: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, cfg.Viewer.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Close()
	})

	if cfg.Tray {
		runTray(gctx, stop, a, viewerURL(cfg.Viewer.Addr))
	}

	return g.Wait()
}

// runTray shows the tray menu until ctx ends or Quit is chosen. The tray
// must own the main goroutine on some platforms.
func runTray(ctx context.Context, quit context.CancelFunc, a *app.App, url string) {
	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnOpenViewer(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open viewer: %v", err)
		}
	})
	t.OnQuit(quit)
	a.OnGesture(func(c app.Change) { t.SetGesture(c.Label) })

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
