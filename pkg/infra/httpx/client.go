package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxFailures = 5
	DefaultOpenTimeout = 30 * time.Second
)

var (
	_ platform.Requester = (*Client)(nil)

	errServerFailure = errors.New("upstream server error")
)

type ClientOptions struct {
	Name        string
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
	Transport   http.RoundTripper
}

// Client is the concrete network-dispatch primitive handed to the host. Calls
// go through a circuit breaker that trips after consecutive transport errors
// or 5xx responses.
type Client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

func NewClient(opts ClientOptions, logger *logrus.Logger) *Client {
	if opts.Name == "" {
		opts.Name = "outbound"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOpenTimeout
	}
	maxFailures := opts.MaxFailures
	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 5,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	_, err := c.breaker.Execute(func() (interface{}, error) {
		r, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return nil, errServerFailure
		}
		return nil, nil
	})
	if errors.Is(err, errServerFailure) {
		// the response is still handed back; the breaker only counts it
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("breaker (%s): %w", c.breaker.Name(), err)
	}
	return resp, nil
}

func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
