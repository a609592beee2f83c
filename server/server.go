// Package server exposes a scene host over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/soypat/implicit/scene"
	"github.com/soypat/implicit/scene/isosurface"
)

// Server serves a scene host. Host access is serialized by the host itself,
// so handlers and the frame loop may run concurrently.
type Server struct {
	host    *scene.Host
	log     logrus.FieldLogger
	store   persistence.CacheStore
	defs    []isosurface.Definition
	preview previewSettings
	router  *gin.Engine
}

// Options configure a Server.
type Options struct {
	// Surfaces served under /api/surfaces. Defaults to isosurface.Definitions().
	Surfaces []isosurface.Definition
	// ListingTTL is how long scene and surface listings are cached.
	// Defaults to an hour.
	ListingTTL time.Duration
	// Release selects gin release mode.
	Release bool
}

// New returns a server for host. A nil log uses the logrus standard logger.
func New(host *scene.Host, log logrus.FieldLogger, opts Options) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Surfaces == nil {
		opts.Surfaces = isosurface.Definitions()
	}
	if opts.ListingTTL <= 0 {
		opts.ListingTTL = time.Hour
	}
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		host:    host,
		log:     log,
		store:   persistence.NewInMemoryStore(time.Minute),
		defs:    opts.Surfaces,
		preview: defaultPreviewSettings(),
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	api := r.Group("/api")
	api.GET("/scenes", s.cachePage(opts.ListingTTL, s.listScenes))
	api.GET("/scenes/:id", s.cachePage(opts.ListingTTL, s.sceneInfo))
	api.POST("/scenes/:id/load", s.loadScene)
	api.GET("/current", s.current)
	api.POST("/keys/:key", s.keyDown)
	api.GET("/stats", s.stats)
	api.GET("/mesh.stl", s.meshSTL)
	api.GET("/mesh.obj", s.meshOBJ)
	api.GET("/preview.png", s.previewPNG)
	api.GET("/surfaces", s.cachePage(opts.ListingTTL, s.listSurfaces))
	api.GET("/surfaces/:id/profile.png", s.cachePage(opts.ListingTTL, s.surfaceProfile))
	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr and ticks the host at fps until ctx is done.
func (s *Server) Run(ctx context.Context, addr string, fps int) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() { loopErr <- s.host.Run(ctx, fps) }()

	srvErr := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		cancel()
		<-loopErr
		return err
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	err := srv.Shutdown(shutdownCtx)
	<-loopErr
	if err != nil {
		return err
	}
	if err = <-srvErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// cachePage wraps cache.CachePage and also emits client side cache headers.
func (s *Server) cachePage(expiration time.Duration, h gin.HandlerFunc) gin.HandlerFunc {
	ch := cache.CachePage(s.store, expiration, h)
	maxAge := fmt.Sprintf("public, max-age=%d", int(expiration.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", maxAge)
		c.Header("Expires", time.Now().UTC().Add(expiration).Format(http.TimeFormat))
		ch(c)
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		switch {
		case len(c.Errors) > 0:
			entry.WithError(c.Errors.Last()).Warn("request failed")
		default:
			entry.Debug("request")
		}
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
