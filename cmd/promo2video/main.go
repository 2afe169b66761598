package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ivlev/promo2video/internal/config"
	"github.com/ivlev/promo2video/internal/director"
	"github.com/ivlev/promo2video/internal/engine"
	"github.com/ivlev/promo2video/internal/logger"
	"github.com/ivlev/promo2video/internal/media"
	"github.com/ivlev/promo2video/internal/metrics"
	"github.com/ivlev/promo2video/internal/preview"
	"github.com/ivlev/promo2video/internal/renderer"
	"github.com/ivlev/promo2video/internal/system"
	"github.com/ivlev/promo2video/internal/video"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	compPtr := flag.String("comp", "", "Композиция: StartBridgeAd, CreeFicheAd или id из -scenario")
	scenarioPtr := flag.String("scenario", "", "YAML-сценарий или папка со сценариями (заменяют встроенные с тем же id)")
	exportPtr := flag.String("export", "", "Сохранить сценарий выбранной композиции в YAML и выйти")
	assetsPtr := flag.String("assets", config.GetEnv("PROMO_ASSETS", "public"), "Папка с медиа (изображения, видео, PDF, аудио)")
	fontsPtr := flag.String("fonts", config.GetEnv("PROMO_FONTS", "fonts"), "Папка со шрифтами TTF/OTF")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	framesPtr := flag.String("frames", "", "Диапазон кадров start:end (по умолчанию вся композиция)")
	stillPtr := flag.Int("still", -1, "Сохранить один кадр в PNG вместо видео")
	stillOutPtr := flag.String("still-out", "", "Путь к PNG для -still")
	listPtr := flag.Bool("list", false, "Показать доступные композиции и выйти")
	servePtr := flag.String("serve", "", "Запустить сервер предпросмотра, например :8080")
	workersPtr := flag.Int("workers", config.GetEnvInt("PROMO_WORKERS", 0), "Потоки (0 - по числу CPU и свободной памяти)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Отчет о производительности в конце")
	metricsFilePtr := flag.String("metrics-file", "", "Записать метрики Prometheus в файл после рендера")
	logLevelPtr := flag.String("log-level", config.GetEnv("LOG_LEVEL", "info"), "Уровень логов: debug, info, warn, error")
	logFormatPtr := flag.String("log-format", config.GetEnv("LOG_FORMAT", "text"), "Формат логов: text, json, logfmt")

	flag.Parse()

	start, end, err := config.ParseFrameRange(*framesPtr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := &config.Config{
		Composition:  *compPtr,
		ScenarioFile: *scenarioPtr,
		ExportFile:   *exportPtr,
		AssetsDir:    *assetsPtr,
		FontsDir:     *fontsPtr,
		OutputVideo:  *outputPtr,
		Workers:      *workersPtr,
		Quality:      *qualityPtr,
		FrameStart:   start,
		FrameEnd:     end,
		StillFrame:   *stillPtr,
		StillOutput:  *stillOutPtr,
		ServeAddr:    *servePtr,
		LogLevel:     *logLevelPtr,
		LogFormat:    *logFormatPtr,
		MetricsFile:  *metricsFilePtr,
		ShowStats:    *statsPtr,
		ListOnly:     *listPtr,
		BuildVersion: version,
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Error("promo2video failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, l *log.Logger) error {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits(l)

	catalog, err := director.NewCatalog(l)
	if err != nil {
		return err
	}
	if cfg.ScenarioFile != "" {
		id, err := loadScenarios(catalog, cfg.ScenarioFile)
		if err != nil {
			return err
		}
		if cfg.Composition == "" {
			cfg.Composition = id
		}
	}

	if cfg.ListOnly {
		for _, id := range catalog.IDs() {
			comp, err := catalog.Composition(id)
			if err != nil {
				return err
			}
			fmt.Printf("%-16s %4d frames @ %d fps  %dx%d  %.1fs\n", id, comp.Frames, comp.FPS, comp.Width, comp.Height, comp.Duration())
		}
		return nil
	}

	if cfg.ExportFile != "" {
		scenario, ok := catalog.Scenario(cfg.Composition)
		if !ok {
			return fmt.Errorf("%w: %q", director.ErrUnknownComposition, cfg.Composition)
		}
		if err := director.WriteScenario(scenario, cfg.ExportFile); err != nil {
			return err
		}
		l.Info("scenario exported", "id", scenario.ID, "path", cfg.ExportFile)
		return nil
	}

	met := metrics.New()
	resolver := media.DirResolver{Root: cfg.AssetsDir}
	library := media.NewLibrary(resolver, l)
	library.OnFailure = func(ref media.Reference, err error) {
		met.IncFallback(ref.Kind.String())
	}
	raster := renderer.NewRasterizer(library, renderer.NewFontBook(cfg.FontsDir, l))

	if cfg.ServeAddr != "" {
		return serve(ctx, cfg.ServeAddr, preview.NewServer(catalog, raster, l, met), l)
	}

	if cfg.Composition == "" {
		return errors.New("no composition selected, use -comp or -list")
	}
	comp, err := catalog.Composition(cfg.Composition)
	if err != nil {
		return err
	}
	scenario, _ := catalog.Scenario(cfg.Composition)
	assets, err := director.Assets(scenario)
	if err != nil {
		return err
	}

	project := engine.NewVideoProject(cfg, comp, raster, &video.FFmpegEncoder{}, l)
	project.Resolver = resolver
	project.Assets = assets
	project.Metrics = met

	if cfg.StillFrame >= 0 {
		if cfg.StillOutput == "" {
			cfg.StillOutput = filepath.Join("output", fmt.Sprintf("%s_%04d.png", comp.ID, cfg.StillFrame))
		}
		if err := project.RenderStill(ctx, cfg.StillFrame, cfg.StillOutput); err != nil {
			return err
		}
		return writeMetrics(cfg, met, l)
	}

	cfg.VideoEncoder = system.GetBestH264Encoder(ctx)
	if cfg.VideoEncoder != "libx264" {
		l.Info("hardware encoder detected", "encoder", cfg.VideoEncoder)
	}
	if cfg.Quality == 0 {
		switch cfg.VideoEncoder {
		case "h264_videotoolbox":
			cfg.Quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			cfg.Quality = 28 // Эквивалент CRF для NVENC
		default:
			cfg.Quality = 23 // Стандартный CRF для x264
		}
	}
	if cfg.OutputVideo == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", comp.ID, timestamp))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.OutputVideo), 0755); err != nil {
		return err
	}

	if err := project.Run(ctx); err != nil {
		return err
	}
	return writeMetrics(cfg, met, l)
}

// loadScenarios adds a scenario file, or every scenario in a directory.
// For a single file its id is returned so -comp may be omitted.
func loadScenarios(c *director.Catalog, path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", c.LoadDir(path)
	}
	return c.LoadFile(path)
}

func writeMetrics(cfg *config.Config, met *metrics.Metrics, l *log.Logger) error {
	if cfg.MetricsFile == "" {
		return nil
	}
	if err := met.WriteToTextfile(cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	l.Debug("metrics written", "path", cfg.MetricsFile)
	return nil
}

func serve(ctx context.Context, addr string, s *preview.Server, l *log.Logger) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	l.Info("preview server starting", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	l.Info("server stopped")
	return nil
}
