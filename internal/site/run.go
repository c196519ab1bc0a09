package site

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run loads content, then serves on http_addr until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	tlsConf, err := TLSFromConfig(ctx, s.cfg)
	if err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	addr := s.cfg.GetString("http_addr")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	snap := s.catalog.Refresh(ctx)
	s.log.Info("site listening",
		zap.String("addr", ln.Addr().String()),
		zap.Bool("tls", tlsConf != nil),
		zap.Bool("fallback", snap.UsingFallback()))
	return s.Serve(ctx, ln, tlsConf)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully. With
// a TLS config and http.quic_addr set, an HTTP/3 listener runs alongside.
func (s *Server) Serve(ctx context.Context, ln net.Listener, tlsConf *tls.Config) error {
	handler := s.Router()

	var h3 *http3.Server
	if quicAddr := s.cfg.GetString("http.quic_addr"); tlsConf != nil && quicAddr != "" {
		h3 = &http3.Server{Addr: quicAddr, Handler: handler, TLSConfig: tlsConf.Clone()}
		handler = advertiseHTTP3(h3, handler)
	}

	srv := &http.Server{
		Handler:           handler,
		TLSConfig:         tlsConf,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if tlsConf != nil {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	if h3 != nil {
		g.Go(func() error {
			s.log.Info("http3 listening", zap.String("addr", h3.Addr))
			err := h3.ListenAndServe()
			if gctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("http3: %w", err)
		})
	}
	if interval := s.cfg.GetDuration("content.refresh_interval"); interval > 0 {
		g.Go(func() error {
			s.refreshLoop(gctx, interval)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if h3 != nil {
			_ = h3.Close()
		}
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// refreshLoop reloads the catalog every interval until ctx is done.
func (s *Server) refreshLoop(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			snap := s.catalog.Refresh(ctx)
			s.log.Debug("content refreshed", zap.Bool("fallback", snap.UsingFallback()), zap.String("digest", snap.Digest))
		}
	}
}

func advertiseHTTP3(h3 *http3.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ProtoMajor < 3 {
			_ = h3.SetQUICHeaders(w.Header())
		}
		next.ServeHTTP(w, r)
	})
}
