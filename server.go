package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"image-scraper/config"
	"image-scraper/crawler"
	"image-scraper/extract"
	"image-scraper/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type imageExtractor interface {
	Extract(ctx context.Context, targetURL string, maxImages int) (*crawler.ImageResult, error)
	ExtractImages(ctx context.Context, targetURL string, maxImages int) []string
}

type ImagesResponse struct {
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	Images    []string `json:"images"`
	Count     int      `json:"count"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

type Server struct {
	router    *gin.Engine
	settings  config.ServerConfig
	limits    config.ImagesConfig
	extractor imageExtractor
	logger    *zap.Logger
}

func NewServer(cfg *config.Settings, extractor imageExtractor, logger *zap.Logger) *Server {
	r := gin.New()
	r.Use(logging.GinLogger(logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	s := &Server{
		router:    r,
		settings:  cfg.Server,
		limits:    cfg.Images,
		extractor: extractor,
		logger:    logger,
	}
	s.SetupRoutes()
	return s
}

func (s *Server) SetupRoutes() {
	s.router.GET("/", s.homeHandler)
	s.router.POST("/", s.galleryHandler)
	s.router.GET("/api/images", s.imagesAPIHandler)
	s.router.GET("/health", s.healthHandler)
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.settings.Port,
		Handler:      s.router,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) renderGallery(c *gin.Context, targetURL string, maxImages int, images []string, searched bool) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":      "Image Scraper",
		"url":        targetURL,
		"max_images": maxImages,
		"min_images": s.limits.Min,
		"max_limit":  s.limits.Max,
		"images":     images,
		"searched":   searched,
	})
}

func (s *Server) homeHandler(c *gin.Context) {
	s.renderGallery(c, "", s.limits.Default, nil, false)
}

func (s *Server) galleryHandler(c *gin.Context) {
	var req GalleryRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderGallery(c, "", s.limits.Default, nil, false)
		return
	}

	targetURL := strings.TrimSpace(req.URL)
	maxImages := parseMaxImages(req.MaxImages, s.limits)

	var images []string
	if targetURL != "" {
		logger := logging.RequestLogger(c, s.logger)
		done := logging.LogDuration(logger, "galleryHandler", zap.String("url", targetURL))
		images = s.extractor.ExtractImages(c.Request.Context(), targetURL, maxImages)
		done()
	}

	s.renderGallery(c, targetURL, maxImages, images, targetURL != "")
}

func (s *Server) imagesAPIHandler(c *gin.Context) {
	targetURL := strings.TrimSpace(c.Query("url"))
	if targetURL == "" {
		c.JSON(http.StatusBadRequest, ImagesResponse{
			Images: []string{},
			Error:  "URL parameter required",
		})
		return
	}
	maxImages := parseMaxImages(c.DefaultQuery("max_images", ""), s.limits)

	logger := logging.RequestLogger(c, s.logger)
	defer logging.LogDuration(logger, "imagesAPIHandler", zap.String("url", targetURL))()

	result, err := s.extractor.Extract(c.Request.Context(), targetURL, maxImages)
	if err != nil {
		status := http.StatusBadGateway
		if crawler.KindOf(err) == crawler.KindInvalidURL {
			status = http.StatusBadRequest
		}
		logger.Warn("image extraction failed", zap.String("url", targetURL), zap.Error(err))
		c.JSON(status, ImagesResponse{
			URL:       targetURL,
			Images:    []string{},
			Error:     err.Error(),
			ErrorKind: string(crawler.KindOf(err)),
		})
		return
	}

	if c.Query("format") == "markdown" {
		markdown, err := extract.GalleryMarkdown(result.Title, result.Images)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ImagesResponse{URL: targetURL, Images: []string{}, Error: err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
		return
	}

	c.JSON(http.StatusOK, ImagesResponse{
		URL:    result.URL,
		Title:  result.Title,
		Images: result.Images,
		Count:  len(result.Images),
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
