package redisstore

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

// fakeDial returns a dialFunc that counts calls and yields the given
// client or error. The client is never used for commands.
func fakeDial(calls *int, c redis.UniversalClient, err error) dialFunc {
	return func(context.Context, string) (redis.UniversalClient, error) {
		*calls++
		return c, err
	}
}

func newFakeClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	c := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientClusterFirst(t *testing.T) {
	s, err := New(Config{Endpoint: "localhost"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	fake := newFakeClient(t)
	var clusterCalls, singleCalls int
	s.dialCluster = fakeDial(&clusterCalls, fake, nil)
	s.dialSingle = fakeDial(&singleCalls, nil, errors.New("should not be dialed"))

	c, err := s.client(context.Background())
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if c != fake {
		t.Error("client did not return the cluster handle")
	}
	if clusterCalls != 1 || singleCalls != 0 {
		t.Errorf("dials = %d cluster, %d single, want 1, 0", clusterCalls, singleCalls)
	}
}

func TestClientFallsBackToSingleNode(t *testing.T) {
	s, err := New(Config{Endpoint: "localhost"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	fake := newFakeClient(t)
	var clusterCalls, singleCalls int
	s.dialCluster = fakeDial(&clusterCalls, nil, errors.New("ERR This instance has cluster support disabled"))
	s.dialSingle = fakeDial(&singleCalls, fake, nil)

	c, err := s.client(context.Background())
	if err != nil {
		t.Fatalf("client error: %v", err)
	}
	if c != fake {
		t.Error("client did not return the single node handle")
	}
	if clusterCalls != 1 || singleCalls != 1 {
		t.Errorf("dials = %d cluster, %d single, want 1, 1", clusterCalls, singleCalls)
	}
}

func TestClientCachesHandle(t *testing.T) {
	s, err := New(Config{Endpoint: "localhost"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	fake := newFakeClient(t)
	var clusterCalls int
	s.dialCluster = fakeDial(&clusterCalls, fake, nil)

	for i := 0; i < 3; i++ {
		if _, err := s.client(context.Background()); err != nil {
			t.Fatalf("client error on call %d: %v", i, err)
		}
	}
	if clusterCalls != 1 {
		t.Errorf("cluster dials = %d, want 1", clusterCalls)
	}
}

func TestClientDialErrorIsNotCached(t *testing.T) {
	s, err := New(Config{Endpoint: "localhost"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	dialErr := errors.New("connection refused")
	var clusterCalls, singleCalls int
	s.dialCluster = fakeDial(&clusterCalls, nil, dialErr)
	s.dialSingle = fakeDial(&singleCalls, newFakeClient(t), nil)

	for i := 0; i < 2; i++ {
		if _, err := s.client(context.Background()); !errors.Is(err, dialErr) {
			t.Fatalf("client error = %v, want %v", err, dialErr)
		}
	}
	if clusterCalls != 2 {
		t.Errorf("cluster dials = %d, want 2 (failed dial must retry)", clusterCalls)
	}
	// "connection refused" is not the fallback condition
	if singleCalls != 0 {
		t.Errorf("single dials = %d, want 0", singleCalls)
	}
}

func TestClientDialsResolvedURL(t *testing.T) {
	t.Setenv(SecretUser, "")
	t.Setenv(SecretPassword, "")

	s, err := New(Config{Endpoint: "localhost:7000"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var gotURL string
	s.dialCluster = func(_ context.Context, rawURL string) (redis.UniversalClient, error) {
		gotURL = rawURL
		return newFakeClient(t), nil
	}

	if _, err := s.client(context.Background()); err != nil {
		t.Fatalf("client error: %v", err)
	}
	if want := "redis://localhost:7000"; gotURL != want {
		t.Errorf("dialed %q, want %q", gotURL, want)
	}
}

func TestIsClusterDisabled(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("ERR This instance has cluster support disabled"), true},
		{errors.New("ERR unknown command 'CLUSTER'"), true},
		{errors.New("ERR unknown command 'FOO'"), false},
		{errors.New("connection refused"), false},
		{errors.New("CLUSTERDOWN The cluster is down"), false},
	}

	for _, tt := range tests {
		if got := isClusterDisabled(tt.err); got != tt.want {
			t.Errorf("isClusterDisabled(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
