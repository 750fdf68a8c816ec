// Package graphdb runs read-only Cypher against Neo4j and describes the graph schema.
package graphdb

import (
	"context"
	"cypher_chat/src/logger"
	"cypher_chat/src/model"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Executor opens a fresh driver for every call: one database round trip per
// user turn, no pooling across turns and no retries.
type Executor struct {
	config model.GraphConfig
}

func NewExecutor(config model.GraphConfig) *Executor {
	return &Executor{config: config}
}

// Execute runs query in a read session and collects every record
func (e *Executor) Execute(ctx context.Context, query string) (*ResultSet, error) {
	return e.run(ctx, query, nil)
}

// Ping checks that the database is reachable with the configured credentials
func (e *Executor) Ping(ctx context.Context) error {
	driver, err := e.open()
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to connect to Neo4j: %w", err)
	}
	return nil
}

func (e *Executor) open() (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(e.config.URI, neo4j.BasicAuth(e.config.Username, e.config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	return driver, nil
}

func (e *Executor) run(ctx context.Context, query string, params map[string]any) (*ResultSet, error) {
	log := logger.Component("executor")
	start := time.Now()

	driver, err := e.open()
	if err != nil {
		return nil, err
	}
	defer driver.Close(ctx)

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: e.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	keys, err := result.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to read result keys: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect results: %w", err)
	}

	rs := NewResultSet(keys, records)
	log.Debug().
		Int("rows", len(rs.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("Query executed")

	return rs, nil
}
