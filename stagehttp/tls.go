package stagehttp

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

var (
	// ErrTLSCertificateRequired indicates an incomplete TLS configuration
	ErrTLSCertificateRequired = errors.New("both a certificate file and key file are required")

	// ErrUnableToAddClientCACertificate indicates a client CA file that
	// could not be parsed
	ErrUnableToAddClientCACertificate = errors.New("unable to add client CA certificate")
)

// TLS configures HTTPS for a staged server from pre-provisioned files.
// The zero value is not a valid configuration; a nil *TLS means "no TLS".
type TLS struct {
	// CertificateFile is the PEM-encoded server certificate
	CertificateFile string

	// KeyFile is the PEM-encoded server key
	KeyFile string

	// ClientCACertificateFile optionally enables mutual TLS with the
	// given client CA bundle
	ClientCACertificateFile string

	// ServerName is the expected server name, used by clients connecting
	// to the staged server
	ServerName string

	// InsecureSkipVerify controls certificate verification on the client
	// side of staged connections.  Tests using self-signed certificates
	// normally set this.
	InsecureSkipVerify bool
}

// New produces a *tls.Config from this configuration.  A nil receiver
// returns a nil *tls.Config, which disables TLS.
func (t *TLS) New() (*tls.Config, error) {
	if t == nil {
		return nil, nil
	}

	if t.CertificateFile == "" || t.KeyFile == "" {
		return nil, ErrTLSCertificateRequired
	}

	certificate, err := tls.LoadX509KeyPair(t.CertificateFile, t.KeyFile)
	if err != nil {
		return nil, err
	}

	tc := &tls.Config{ // nolint:gosec // test servers negotiate whatever the test needs
		Certificates: []tls.Certificate{certificate},
		ServerName:   t.ServerName,
	}

	if t.ClientCACertificateFile != "" {
		pem, err := os.ReadFile(t.ClientCACertificateFile)
		if err != nil {
			return nil, err
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, ErrUnableToAddClientCACertificate
		}

		tc.ClientCAs = pool
		tc.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tc, nil
}
