package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/config"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/server"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/ayusman/fingerspell/internal/tray"
)

var (
	serveCamera bool
	serveTray   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the practice page and API",
	Long: `Opens the database, seeds the alphabet and serves the practice page and
HTTP API. With --camera the live recognition pipeline watches the camera and
sends accepted letters to the configured output plugin.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveCamera, "camera", false, "run the live camera pipeline (overrides camera.enabled)")
	serveCmd.Flags().BoolVar(&serveTray, "tray", false, "show the system tray menu")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("camera") {
		cfg.Camera.Enabled = serveCamera
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	seeded, err := st.Letters().SeedAlphabet()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": st.Path(), "seeded": seeded}).Info("database ready")

	plugins := plugin.NewManager(cfg.Output.PluginDir, log)
	if err := plugins.Discover(); err != nil {
		log.WithError(err).Warn("discovering plugins")
	}

	classifier := gesture.NewClassifier(gesture.WithRejectThreshold(cfg.Recognition.RejectThreshold))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg := server.Config{
		StaticDir:       findStaticDir(cfg.Server.StaticDir),
		Store:           st,
		Classifier:      classifier,
		Plugins:         plugins,
		AcceptThreshold: cfg.Recognition.AcceptThreshold,
		FrameRate:       cfg.Server.FrameRate,
		FrameBurst:      cfg.Server.FrameBurst,
		Logger:          log,
	}
	if srvCfg.StaticDir != "" {
		log.WithField("dir", srvCfg.StaticDir).Info("serving practice page")
	}

	var pipeline *app.App
	if cfg.Camera.Enabled {
		pipeline, err = startPipeline(ctx, cfg, st, plugins, classifier, log)
		if err != nil {
			log.WithError(err).Warn("camera pipeline disabled")
		} else {
			defer pipeline.Stop()
			srvCfg.Camera = pipeline.Camera()
			srvCfg.Detector = pipeline.Detector()
		}
	}

	srv := server.New(srvCfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		stop()
	}()

	if serveTray {
		runTray(ctx, stop, pipeline, practiceURL(cfg.Server.Addr), log)
	}

	return <-errCh
}

func startPipeline(ctx context.Context, cfg *config.Config, st *store.Store, plugins *plugin.Manager,
	classifier *gesture.Classifier, log logrus.FieldLogger) (*app.App, error) {
	d, err := app.NewDetector(cfg)
	if err != nil {
		return nil, err
	}

	ac := app.ConfigFrom(cfg, st, log)
	ac.Detector = d
	ac.Plugins = plugins
	ac.Classifier = classifier

	a := app.New(ac)
	if err := a.Start(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return a, nil
}

// runTray blocks on the tray menu until ctx is done or Quit is chosen.
func runTray(ctx context.Context, stop context.CancelFunc, pipeline *app.App, url string, log logrus.FieldLogger) {
	t := tray.New()
	t.OnQuit(stop)
	t.OnPractice(func() {
		if err := openBrowser(url); err != nil {
			log.WithError(err).WithField("url", url).Warn("opening practice page")
		}
	})
	if pipeline != nil {
		t.OnToggle(pipeline.SetEnabled)
		pipeline.OnRecognition(func(r app.Recognition) {
			t.SetLast(r.Letter.String(), r.Confidence)
		})
	}

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// findStaticDir returns configured when it is a directory, else the first of
// ../web, ../../web and ~/.fingerspell/web that exists, else "".
func findStaticDir(configured string) string {
	candidates := []string{configured, "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".fingerspell", "web"))
	}

	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// practiceURL turns a listen address into a browsable URL.
func practiceURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func openBrowser(url string) error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		name = "xdg-open"
	}
	return exec.Command(name, url).Start()
}
