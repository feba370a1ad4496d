package lib

import (
	"context"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
)

// ClientFromOrigin builds a weaviate client from an origin URL such as
// http://localhost:8080.
func ClientFromOrigin(origin string) (*weaviate.Client, error) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}

	config := weaviate.Config{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
	}

	return weaviate.New(config), nil
}

// WaitReady blocks until the store reports live, or the timeout elapses.
func WaitReady(ctx context.Context, client *weaviate.Client, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		ok, err := client.Misc().LiveChecker().Do(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("not live yet")
		}
		return nil
	}, backoff.WithContext(b, ctx))
}
