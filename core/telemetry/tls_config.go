package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
)

// getTLSConfig builds a client TLS configuration trusting the base64 encoded
// PEM certificates.
func getTLSConfig(caCertsBase64 string) (*tls.Config, error) {
	caCertsBytes, err := base64.StdEncoding.DecodeString(caCertsBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding collector CA certificates: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCertsBytes) {
		return nil, errors.New("no collector CA certificate could be parsed")
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
