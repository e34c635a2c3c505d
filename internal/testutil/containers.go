//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const startupTimeout = 2 * time.Minute

// PostgresURL returns a URL for a PostgreSQL test server.
// POSTGRES_URL wins; otherwise a postgres container is started for the test.
func PostgresURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("POSTGRES_URL"); url != "" {
		return url
	}

	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "fixture",
			"POSTGRES_PASSWORD": "fixture",
			"POSTGRES_DB":       "fixture_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(startupTimeout),
	}, "5432/tcp")

	return fmt.Sprintf("postgres://fixture:fixture@%s:%s/fixture_test?sslmode=disable", host, port)
}

// MySQLURL returns a URL for a MySQL test server.
// MYSQL_URL wins; otherwise a mysql container is started for the test.
func MySQLURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("MYSQL_URL"); url != "" {
		return url
	}

	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8.4",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "fixture",
			"MYSQL_USER":          "fixture",
			"MYSQL_PASSWORD":      "fixture",
			"MYSQL_DATABASE":      "fixture_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("3306/tcp"),
			wait.ForLog("port: 3306  MySQL Community Server"),
		).WithDeadline(startupTimeout),
	}, "3306/tcp")

	return fmt.Sprintf("mysql://fixture:fixture@%s:%s/fixture_test", host, port)
}

// startContainer runs req, registers its termination with t.Cleanup and
// returns the host and mapped port for exposed.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, exposed string) (string, string) {
	t.Helper()

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate %s: %v", req.Image, err)
		}
	})

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get %s host: %v", req.Image, err)
	}
	port, err := ctr.MappedPort(ctx, nat.Port(exposed))
	if err != nil {
		t.Fatalf("failed to get %s port: %v", req.Image, err)
	}
	return host, port.Port()
}
