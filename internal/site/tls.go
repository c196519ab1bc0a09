package site

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/spf13/viper"
)

// CertMagicConfig configures automatic certificate management with CertMagic.
type CertMagicConfig struct {
	Domain     string
	Email      string
	StorageDir string
	CA         string // defaults to Let's Encrypt production
}

// TLSFromConfig builds the listener TLS config from tls.* keys. It returns
// nil, nil when TLS is not configured.
func TLSFromConfig(ctx context.Context, v *viper.Viper) (*tls.Config, error) {
	cert, key := v.GetString("tls.cert_file"), v.GetString("tls.key_file")
	switch {
	case cert != "" || key != "":
		return BuildFileTLS(cert, key)
	case v.GetString("tls.domain") != "":
		return BuildCertMagicTLS(ctx, CertMagicConfig{
			Domain:     v.GetString("tls.domain"),
			Email:      v.GetString("tls.email"),
			StorageDir: filepath.Join(v.GetString("data_dir"), "certmagic"),
		})
	default:
		return nil, nil
	}
}

// BuildCertMagicTLS provisions or loads certificates via CertMagic. Only the
// TLS-ALPN challenge is enabled, so the site must be reachable on :443.
func BuildCertMagicTLS(ctx context.Context, cfg CertMagicConfig) (*tls.Config, error) {
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}
	if cfg.StorageDir == "" {
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			cfg.StorageDir = filepath.Join(xdg, "arttown", "certmagic")
		} else {
			home, _ := os.UserHomeDir()
			cfg.StorageDir = filepath.Join(home, ".cache", "arttown", "certmagic")
		}
	}
	if err := os.MkdirAll(cfg.StorageDir, 0o700); err != nil {
		return nil, fmt.Errorf("cert storage: %w", err)
	}

	cm := certmagic.NewDefault()
	cm.Storage = &certmagic.FileStorage{Path: cfg.StorageDir}
	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                   ifEmpty(cfg.CA, certmagic.LetsEncryptProductionCA),
		Email:                cfg.Email,
		Agreed:               true,
		DisableHTTPChallenge: true,
	})
	cm.Issuers = []certmagic.Issuer{issuer}

	if err := cm.ManageSync(ctx, []string{cfg.Domain}); err != nil {
		return nil, fmt.Errorf("manage certificate for %s: %w", cfg.Domain, err)
	}
	tlsConf := cm.TLSConfig()
	tlsConf.NextProtos = appendProtos(tlsConf.NextProtos, "h2", "http/1.1")
	tlsConf.MinVersion = tls.VersionTLS12
	return tlsConf, nil
}

func ifEmpty(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

func appendProtos(have []string, want ...string) []string {
	for _, p := range want {
		found := false
		for _, h := range have {
			if h == p {
				found = true
				break
			}
		}
		if !found {
			have = append(have, p)
		}
	}
	return have
}

// BuildFileTLS loads a certificate from PEM files for BYO certs.
func BuildFileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("both certFile and keyFile are required")
	}

	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	now := time.Now()
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("invalid certificate at index %d: %w", i, err)
		}
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("certificate expired on %s", cert.NotAfter)
		}
	}

	return &tls.Config{
		Certificates: []tls.Certificate{c},
		NextProtos:   []string{"h2", "http/1.1"},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
