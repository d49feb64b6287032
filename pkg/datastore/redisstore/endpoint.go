package redisstore

import (
	"net/url"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

// Credential names resolved through secrets or the environment. Both
// absent means an anonymous connection.
const (
	SecretUser     = "REDIS_USER"
	SecretPassword = "REDIS_PASSWORD"
)

const defaultPort = "6379"

// connectionInfo is the resolved form of a redis endpoint.
type connectionInfo struct {
	// url is the connection URL handed to the redis client, with any
	// credentials injected.
	url string
	// redacted is the same URL without credentials, safe to log.
	redacted string
	secure   bool
}

// resolveEndpoint normalizes a raw endpoint into the URL handed to the
// redis client. An endpoint without a redis scheme is reinterpreted
// under the given scheme. Credentials never come from the endpoint
// itself; they are looked up under REDIS_USER and REDIS_PASSWORD and
// injected here.
func resolveEndpoint(endpoint, scheme string, secrets datastore.Secrets) (connectionInfo, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		u, err = url.Parse(scheme + "://" + endpoint)
		if err != nil {
			return connectionInfo{}, datastore.InvalidArgument("parse redis endpoint %q: %v", endpoint, err)
		}
	}

	if u.User != nil {
		return connectionInfo{}, datastore.InvalidArgument("provide redis username and password only via secrets")
	}

	host := u.Hostname()
	if host == "" {
		return connectionInfo{}, datastore.InvalidArgument("redis endpoint %q has no host", endpoint)
	}
	port := u.Port()
	if port == "" {
		port = defaultPort
	}

	target := url.URL{Scheme: u.Scheme, Host: host + ":" + port}
	info := connectionInfo{
		redacted: target.String(),
		secure:   u.Scheme == "rediss",
	}

	user := secrets.GetOrEnv(SecretUser)
	password := secrets.GetOrEnv(SecretPassword)
	if user != "" || password != "" {
		target.User = url.UserPassword(user, password)
	}
	info.url = target.String()

	return info, nil
}
