package ports

import "net/http"

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClientFunc adapts a plain function to HTTPClient.
type HTTPClientFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f HTTPClientFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}
