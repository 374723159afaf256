package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPath is where the exposition handler is mounted.
const DefaultPath = "/metrics"

type options struct {
	path string
}

// Option customizes the metrics service.
type Option func(*options)

// PathOption mounts the exposition handler at a custom path.
func PathOption(path string) Option {
	return func(opts *options) {
		opts.path = path
	}
}

// Service serves the Prometheus exposition endpoint.
type Service struct {
	server *http.Server
	ln     net.Listener
}

// NewService listens on addr and prepares the exposition endpoint. The
// listener is bound immediately so configuration errors surface at startup,
// not on first scrape.
func NewService(addr string, opts ...Option) (*Service, error) {
	var options options
	for _, opt := range opts {
		opt(&options)
	}
	if options.path == "" {
		options.path = DefaultPath
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(options.path, promhttp.Handler())

	return &Service{
		server: &http.Server{Handler: mux},
		ln:     ln,
	}, nil
}

// Serve blocks serving scrapes until Close is called.
func (s *Service) Serve() error {
	return s.server.Serve(s.ln)
}

// Addr returns the bound listen address.
func (s *Service) Addr() net.Addr {
	return s.ln.Addr()
}

// Close shuts the endpoint down.
func (s *Service) Close() error {
	return s.server.Close()
}
