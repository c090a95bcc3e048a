// Package cassandra implements the storage ports on top of gocql. Every write
// is a full-row upsert or a delete by fixed key; there are no cross-table
// batches here on purpose — the core is specified against a store without
// multi-row atomicity, and hiding a batch behind this interface would mask
// the partial-failure modes the fan-out layer is built to report.
package cassandra

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gocql/gocql"
)

// Config describes the cluster connection and keyspace.
type Config struct {
	Hosts          []string
	Port           int
	Keyspace       string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	Replication    int
}

// Connect dials the cluster, ensures keyspace and tables exist, and returns a
// ready session. Schema setup is idempotent (IF NOT EXISTS throughout), so
// concurrent instances can race it safely.
func Connect(cfg Config, log *slog.Logger) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.Timeout = cfg.QueryTimeout
	cluster.Consistency = gocql.Quorum

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect cassandra: %w", err)
	}

	createKeyspace := fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`,
		cfg.Keyspace, cfg.Replication,
	)
	if err := session.Query(createKeyspace).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("create keyspace %s: %w", cfg.Keyspace, err)
	}
	session.Close()

	cluster.Keyspace = cfg.Keyspace
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect keyspace %s: %w", cfg.Keyspace, err)
	}

	for _, ddl := range tableDefinitions {
		if err := session.Query(ddl).Exec(); err != nil {
			session.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}

	log.Info("cassandra schema ready", "keyspace", cfg.Keyspace, "hosts", cfg.Hosts)
	return session, nil
}
