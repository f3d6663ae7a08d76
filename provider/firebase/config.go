package firebase

import (
	"net/http"
	"time"
)

// DefaultKeysURL serves the x509 certificates Firebase signs ID tokens with,
// keyed by key id.
const DefaultKeysURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// DefaultFetchTimeout bounds the certificate fetch; a validation is never
// left pending indefinitely.
const DefaultFetchTimeout = 10 * time.Second

// HTTPClient is the transport capability used to retrieve the certificate
// set. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds Firebase token validator options.
type Config struct {
	// KeysURL overrides the certificate endpoint. Empty uses DefaultKeysURL.
	KeysURL string
	// HTTPClient overrides the transport. Nil uses http.DefaultClient.
	HTTPClient HTTPClient
	// FetchTimeout bounds the certificate fetch. Zero uses DefaultFetchTimeout.
	FetchTimeout time.Duration
}

func (c Config) keysURL() string {
	if c.KeysURL != "" {
		return c.KeysURL
	}
	return DefaultKeysURL
}

func (c Config) httpClient() HTTPClient {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Config) fetchTimeout() time.Duration {
	if c.FetchTimeout > 0 {
		return c.FetchTimeout
	}
	return DefaultFetchTimeout
}
