//go:build integration

package containers

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/testcontainers/testcontainers-go"
	tccassandra "github.com/testcontainers/testcontainers-go/modules/cassandra"

	cassandrastore "faultline/internal/storage/cassandra"
)

// CassandraContainer wraps a testcontainers Cassandra instance with a session
// already bound to a freshly created keyspace.
type CassandraContainer struct {
	Container testcontainers.Container
	Session   *gocql.Session
}

// NewCassandraContainer starts a Cassandra container and applies the schema.
func NewCassandraContainer(t *testing.T) *CassandraContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tccassandra.Run(ctx, "cassandra:4.1")
	if err != nil {
		t.Fatalf("failed to start cassandra container: %v", err)
	}

	hostPort, err := container.ConnectionHost(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get cassandra connection host: %v", err)
	}
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to split connection host %q: %v", hostPort, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to parse cassandra port %q: %v", portStr, err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	session, err := cassandrastore.Connect(cassandrastore.Config{
		Hosts:          []string{host},
		Port:           port,
		Keyspace:       "issue_tracker_test",
		ConnectTimeout: time.Minute,
		QueryTimeout:   30 * time.Second,
		Replication:    1,
	}, log)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to cassandra: %v", err)
	}

	cc := &CassandraContainer{Container: container, Session: session}
	t.Cleanup(func() {
		cc.Session.Close()
		_ = container.Terminate(context.Background())
	})
	return cc
}
