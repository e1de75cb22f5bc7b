package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when a PEM source holds no certificate.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found")
)

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a certificate pool seeded with the system roots, or an
// empty pool where the system roots are unavailable.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a new empty certificate pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// FromCAFile returns a pool of the system roots plus the certificates at
// path. A directory contributes every *.pem, *.crt and *.cer file in it.
func FromCAFile(path string) (*Pool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: %w", err)
	}
	p := NewPool()
	if info.IsDir() {
		err = p.AddCertDir(path)
	} else {
		err = p.AddCertFile(path)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AddCertFile adds certificates from a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}
	return nil
}

// AddCertDir adds the certificate files directly under dir. Files with
// other extensions are ignored; the directory must yield at least one
// certificate.
func (p *Pool) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert dir %s: %w", dir, err)
	}
	added := 0
	for _, e := range entries {
		if e.IsDir() || !certExt[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		if err := p.AddCertFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", ErrNoCertsFound, dir)
	}
	return nil
}

var certExt = map[string]bool{".pem": true, ".crt": true, ".cer": true}

// AddCertPEM adds certificates from PEM-encoded data. Non-certificate
// blocks are skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var certsAdded int

	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		certsAdded++
	}

	if certsAdded == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// TLSConfig creates a client TLS config using this pool as root CAs.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}
