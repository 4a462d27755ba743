package linkedin

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL  = "https://www.linkedin.com/voyager/api"
	authURL = "https://www.linkedin.com/uas/authenticate"

	userAgent     = "LinkedIn/8.8.1 CFNetwork/711.3.18 Darwin/14.0.0"
	liUserAgent   = "LIAuthLibrary:3.2.4 com.linkedin.LinkedIn:8.8.1 iPhone:8.3"
	restliVersion = "2.0.0"

	// Max value for people search per page.
	searchPageSize = 49
)

var (
	// ErrProfileNotFound is returned when the network has no profile for the identifier.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidProfileURL is returned when no public identifier can be extracted from a URL.
	ErrInvalidProfileURL = errors.New("invalid profile url")
	// ErrUnauthorized is returned when the login is rejected.
	ErrUnauthorized = errors.New("linkedin authentication failed")
)

type Credentials struct {
	Email    string
	Password string
}

type Client struct {
	credentials Credentials
	logger      *zap.Logger
	HTTPClient  *http.Client
	UserAgent   string
	APIURL      string
	AuthURL     string
	// SearchLimit caps the number of people returned by SearchPeople. Zero means no cap.
	SearchLimit int

	authMu        sync.Mutex
	authenticated bool
	csrfToken     string
}

func New(credentials Credentials, logger *zap.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		credentials: credentials,
		logger:      logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
		AuthURL:   authURL,
	}
}
