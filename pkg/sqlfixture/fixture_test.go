package sqlfixture_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/sqlfixture/internal/testutil"
	"github.com/hlop3z/sqlfixture/pkg/sqlfixture"
)

func connectWithUsers(t *testing.T, fx *sqlfixture.Fixture, names ...string) {
	t.Helper()
	for _, name := range names {
		testutil.Connect(t, fx, name)
		testutil.Run(t, fx, name, testutil.UserTable)
	}
}

func query(t *testing.T, fx *sqlfixture.Fixture, name, sql string) (string, bool) {
	t.Helper()
	value, ok, err := fx.Query(context.Background(), name, sql)
	require.NoError(t, err, sql)
	return value, ok
}

// -----------------------------------------------------------------------------
// Named Connection Tests
// -----------------------------------------------------------------------------

func TestFixture_InsertThenSelectPerDatabase(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1", "testdb2", "testdb3")

	for i, name := range []string{"testdb1", "testdb2", "testdb3"} {
		user := fmt.Sprintf("user%d", i+1)
		password := fmt.Sprintf("password%d", i+1)

		count, ok := query(t, fx, name,
			fmt.Sprintf("INSERT INTO USER (NAME, PASSWORD) VALUES ('%s', '%s')", user, password))
		assert.True(t, ok)
		assert.Equal(t, "1", count)

		got, ok := query(t, fx, name, fmt.Sprintf("SELECT PASSWORD FROM USER WHERE NAME = '%s'", user))
		assert.True(t, ok)
		assert.Equal(t, password, got)
	}
}

func TestFixture_DatabasesAreIsolated(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1", "testdb2")

	testutil.Run(t, fx, "testdb1", "INSERT INTO USER (NAME, PASSWORD) VALUES ('user1', 'password1')")

	_, ok := query(t, fx, "testdb2", "SELECT PASSWORD FROM USER WHERE NAME = 'user1'")
	assert.False(t, ok, "testdb2 must not see rows written to testdb1")

	got, _ := query(t, fx, "testdb2", "SELECT COUNT(*) FROM USER")
	assert.Equal(t, "0", got)
}

func TestFixture_EmptySelect(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb4")

	value, ok := query(t, fx, "testdb4", "SELECT PASSWORD FROM USER")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestFixture_UpdateReturnsRowCount(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb5")
	testutil.Run(t, fx, "testdb5", "INSERT INTO USER (NAME, PASSWORD) VALUES ('user5', 'password5')")

	got, ok := query(t, fx, "testdb5", "UPDATE USER SET PASSWORD='password6' WHERE NAME = 'user5'")
	assert.True(t, ok)
	assert.Equal(t, "1", got)

	got, _ = query(t, fx, "testdb5", "SELECT PASSWORD FROM USER WHERE NAME = 'user5'")
	assert.Equal(t, "password6", got)

	got, ok = query(t, fx, "testdb5", "UPDATE USER SET PASSWORD='passwordx' WHERE NAME = 'userx'")
	assert.True(t, ok)
	assert.Equal(t, "0", got)
}

func TestFixture_UnknownDatabase(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb6", "testdb7", "testdb8")

	_, err := fx.Execute(context.Background(), "testdbx", "SELECT PASSWORD FROM USER")
	require.Error(t, err)
	assert.EqualError(t, err,
		"No database registered for name 'testdbx'. Registered databases: [testdb6, testdb7, testdb8]")
	assert.ErrorIs(t, err, sqlfixture.ErrUnknownDatabase)

	var unknown *sqlfixture.UnknownDatabaseError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "testdbx", unknown.Name)
	assert.Equal(t, []string{"testdb6", "testdb7", "testdb8"}, unknown.Registered)
}

func TestFixture_UnknownDatabaseWhenEmpty(t *testing.T) {
	fx := testutil.NewFixture(t)

	err := fx.Run(context.Background(), "testdb1", "SELECT 1")
	assert.EqualError(t, err, "No database registered for name 'testdb1'. Registered databases: []")
}

// -----------------------------------------------------------------------------
// Connect Tests
// -----------------------------------------------------------------------------

func TestFixture_ConnectDuplicateRejected(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1")
	testutil.Run(t, fx, "testdb1", "INSERT INTO USER (NAME, PASSWORD) VALUES ('kept', 'p')")

	err := fx.Connect(context.Background(), "testdb1", sqlfixture.ConnectionParams{URL: testutil.MemoryURL(t)})
	assert.ErrorIs(t, err, sqlfixture.ErrDuplicateDatabase)

	got, _ := query(t, fx, "testdb1", "SELECT NAME FROM USER")
	assert.Equal(t, "kept", got, "the original connection must survive")
}

func TestFixture_ConnectEmptyName(t *testing.T) {
	fx := testutil.NewFixture(t)

	err := fx.Connect(context.Background(), "  ", sqlfixture.ConnectionParams{URL: testutil.MemoryURL(t)})
	assert.ErrorIs(t, err, sqlfixture.ErrEmptyName)
	assert.Empty(t, fx.Databases())
}

func TestFixture_ConnectUnknownDriver(t *testing.T) {
	fx := testutil.NewFixture(t)

	err := fx.Connect(context.Background(), "testdb1", sqlfixture.ConnectionParams{
		URL:    testutil.MemoryURL(t),
		Driver: "org.apache.derby.jdbc.EmbeddedDriver",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlfixture.ErrConnectionFailed)

	var connErr *sqlfixture.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "testdb1", connErr.Name)
	assert.Equal(t, "org.apache.derby.jdbc.EmbeddedDriver", connErr.Driver)
	assert.NotContains(t, fx.Databases(), "testdb1")
}

func TestFixture_ConnectUndetectableURL(t *testing.T) {
	fx := testutil.NewFixture(t)

	err := fx.Connect(context.Background(), "testdb1", sqlfixture.ConnectionParams{URL: "derby:memory:testdb1"})
	assert.ErrorIs(t, err, sqlfixture.ErrConnectionFailed)
}

func TestFixture_ConnectHSQLDBSettings(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewFixture(t)
	mem := strings.TrimPrefix(testutil.MemoryURL(t), "sqlite:mem:")

	for _, name := range []string{"testdb1", "testdb2"} {
		err := fx.Connect(ctx, name, sqlfixture.ConnectionParams{
			URL:      "jdbc:hsqldb:mem:" + mem + "_" + name,
			Driver:   "org.hsqldb.jdbc.JDBCDriver",
			Username: "sa",
		})
		require.NoError(t, err)
		testutil.Run(t, fx, name, testutil.UserTable)
	}

	count, _ := query(t, fx, "testdb1", "INSERT INTO USER (NAME, PASSWORD) VALUES ('user1', 'password1')")
	assert.Equal(t, "1", count)
	got, ok := query(t, fx, "testdb1", "SELECT PASSWORD FROM USER WHERE NAME = 'user1'")
	assert.True(t, ok)
	assert.Equal(t, "password1", got)

	_, ok = query(t, fx, "testdb2", "SELECT PASSWORD FROM USER WHERE NAME = 'user1'")
	assert.False(t, ok, "testdb2 is a separate database")

	assert.Equal(t, "sqlite", fx.Connections()[0].Driver)
}

func TestFixture_ConnectHSQLDBServerURL(t *testing.T) {
	fx := testutil.NewFixture(t)

	err := fx.Connect(context.Background(), "remote", sqlfixture.ConnectionParams{
		URL:    "jdbc:hsqldb:hsql://localhost:9001/app",
		Driver: "org.hsqldb.jdbc.JDBCDriver",
	})
	assert.ErrorIs(t, err, sqlfixture.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "unsupported hsqldb URL")
}

func TestFixture_ConnectRedactsPassword(t *testing.T) {
	fx := testutil.NewFixture(t, sqlfixture.WithTimeout(2*time.Second))

	err := fx.Connect(context.Background(), "pg", sqlfixture.ConnectionParams{
		URL:      "postgres://127.0.0.1:1/nowhere?sslmode=disable&connect_timeout=1",
		Username: "alice",
		Password: "s3cret",
	})
	require.Error(t, err)

	var connErr *sqlfixture.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "postgres", connErr.Driver)
	assert.NotContains(t, connErr.URL, "s3cret")
}

func TestFixture_ConnectJDBCStyle(t *testing.T) {
	fx := testutil.NewFixture(t)

	url := "jdbc:" + testutil.MemoryURL(t)
	err := fx.Connect(context.Background(), "testdb1", sqlfixture.ConnectionParams{
		URL:      url,
		Driver:   "org.sqlite.JDBC",
		Username: "sa",
	})
	require.NoError(t, err)

	infos := fx.Connections()
	require.Len(t, infos, 1)
	assert.Equal(t, "sqlite", infos[0].Driver)
	assert.Equal(t, url, infos[0].URL)
	assert.False(t, infos[0].ConnectedAt.IsZero())
}

func TestFixture_SameURLSharesState(t *testing.T) {
	fx := testutil.NewFixture(t)
	url := testutil.MemoryURL(t)

	for _, name := range []string{"a", "b"} {
		require.NoError(t, fx.Connect(context.Background(), name, sqlfixture.ConnectionParams{URL: url}))
	}
	testutil.Run(t, fx, "a", "CREATE TABLE t (v TEXT)", "INSERT INTO t VALUES ('shared')")

	got, _ := query(t, fx, "b", "SELECT v FROM t")
	assert.Equal(t, "shared", got)
}

// -----------------------------------------------------------------------------
// Execute Tests
// -----------------------------------------------------------------------------

func TestFixture_ExecuteResultKinds(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1")
	ctx := context.Background()

	res, err := fx.Execute(ctx, "testdb1", "CREATE TABLE ROLE (NAME TEXT)")
	require.NoError(t, err)
	assert.Equal(t, sqlfixture.KindNone, res.Kind)

	res, err = fx.Execute(ctx, "testdb1", "INSERT INTO ROLE VALUES ('admin'), (NULL)")
	require.NoError(t, err)
	assert.Equal(t, sqlfixture.KindRowCount, res.Kind)
	assert.Equal(t, "2", res.Value)

	res, err = fx.Execute(ctx, "testdb1", "SELECT NAME FROM ROLE WHERE NAME IS NULL")
	require.NoError(t, err)
	assert.Equal(t, sqlfixture.KindNone, res.Kind, "NULL is no value")

	res, err = fx.Execute(ctx, "testdb1", "/* lookup */ select name from role where name = 'admin'")
	require.NoError(t, err)
	assert.Equal(t, sqlfixture.KindScalar, res.Kind)
	assert.Equal(t, "admin", res.Value)

	res, err = fx.Execute(ctx, "testdb1", "INSERT INTO USER (NAME, PASSWORD) VALUES ('r', 'p') RETURNING PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, sqlfixture.KindScalar, res.Kind)
	assert.Equal(t, "p", res.Value)
}

func TestFixture_ExecutionError(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1")

	_, err := fx.Execute(context.Background(), "testdb1", "SELECT * FROM MISSING")
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlfixture.ErrExecutionFailed)
	assert.Contains(t, err.Error(), "no such table")

	var execErr *sqlfixture.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "testdb1", execErr.Database)
	assert.Equal(t, "SELECT * FROM MISSING", execErr.SQL)
	assert.Contains(t, execErr.Cause.Error(), "no such table: MISSING")
}

func TestFixture_ExecutionErrorKeepsConnection(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1")

	err := fx.Run(context.Background(), "testdb1", "INSERT INTO USER (NAME) VALUES ('x')")
	require.ErrorIs(t, err, sqlfixture.ErrExecutionFailed)

	got, ok := query(t, fx, "testdb1", "SELECT COUNT(*) FROM USER")
	assert.True(t, ok)
	assert.Equal(t, "0", got)
}

func TestFixture_ExecuteCanceled(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fx.Run(ctx, "testdb1", "SELECT 1")
	assert.ErrorIs(t, err, sqlfixture.ErrExecutionFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

// -----------------------------------------------------------------------------
// Lifecycle Tests
// -----------------------------------------------------------------------------

func TestFixture_DatabasesInRegistrationOrder(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "zeta", "alpha", "mid")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, fx.Databases())
}

func TestFixture_DB(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1")

	db, err := fx.DB("testdb1")
	require.NoError(t, err)
	testutil.AssertRowCount(t, db, "USER", 0)

	_, err = fx.DB("nope")
	assert.ErrorIs(t, err, sqlfixture.ErrUnknownDatabase)
}

func TestFixture_Disconnect(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "testdb1", "testdb2")

	require.NoError(t, fx.Disconnect("testdb1"))
	assert.Equal(t, []string{"testdb2"}, fx.Databases())

	err := fx.Run(context.Background(), "testdb1", "SELECT 1")
	assert.EqualError(t, err, "No database registered for name 'testdb1'. Registered databases: [testdb2]")

	assert.ErrorIs(t, fx.Disconnect("testdb1"), sqlfixture.ErrUnknownDatabase)

	// The name is free again.
	testutil.Connect(t, fx, "testdb1")
	assert.Equal(t, []string{"testdb2", "testdb1"}, fx.Databases())
}

func TestFixture_Ping(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "a", "b", "c")

	assert.NoError(t, fx.Ping(context.Background()))
}

func TestFixture_PingReportsClosedHandles(t *testing.T) {
	fx := testutil.NewFixture(t)
	connectWithUsers(t, fx, "a", "b")

	db, err := fx.DB("b")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	err = fx.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlfixture.ErrConnectionFailed)

	var connErr *sqlfixture.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "b", connErr.Name)
}

func TestFixture_CloseIdempotent(t *testing.T) {
	fx := sqlfixture.New()
	connectWithUsers(t, fx, "testdb1", "testdb2")

	require.NoError(t, fx.Close())
	assert.Empty(t, fx.Databases())
	assert.NoError(t, fx.Close())

	err := fx.Run(context.Background(), "testdb1", "SELECT 1")
	assert.ErrorIs(t, err, sqlfixture.ErrUnknownDatabase)
}

func TestFixture_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx := testutil.NewFixture(t, sqlfixture.WithLogger(logger))
	url := testutil.MemoryURL(t)
	require.NoError(t, fx.Connect(context.Background(), "testdb1", sqlfixture.ConnectionParams{
		URL:      url,
		Password: "hunter2",
	}))
	_, err := fx.Execute(context.Background(), "testdb1", "SELECT 1")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "database connected")
	assert.Contains(t, out, "database=testdb1")
	assert.Contains(t, out, "statement executed")
	assert.Contains(t, out, "kind=scalar")
	assert.False(t, strings.Contains(out, "hunter2"), "password leaked into logs")
}

func TestFixture_Concurrent(t *testing.T) {
	fx := testutil.NewFixture(t)
	names := []string{"c1", "c2", "c3", "c4"}
	connectWithUsers(t, fx, names...)

	errs := make(chan error, len(names)*10)
	done := make(chan struct{})
	for _, name := range names {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range 10 {
				sql := fmt.Sprintf("INSERT INTO USER (NAME, PASSWORD) VALUES ('u%d', 'p')", i)
				if err := fx.Run(context.Background(), name, sql); err != nil {
					errs <- err
				}
			}
		}()
	}
	for range names {
		<-done
	}
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	for _, name := range names {
		got, _ := query(t, fx, name, "SELECT COUNT(*) FROM USER")
		assert.Equal(t, "10", got, name)
	}
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("boom")

	connErr := &sqlfixture.ConnectionError{Name: "db", Driver: "postgres", Cause: cause}
	assert.Equal(t, "sqlfixture: failed to connect db (postgres): boom", connErr.Error())
	assert.ErrorIs(t, connErr, cause)
	assert.NotErrorIs(t, connErr, sqlfixture.ErrExecutionFailed)

	execErr := &sqlfixture.ExecutionError{Database: "db", SQL: "SELECT", Cause: cause}
	assert.Equal(t, "sqlfixture: statement failed on db: boom", execErr.Error())
	assert.ErrorIs(t, execErr, cause)
	assert.NotErrorIs(t, execErr, sqlfixture.ErrConnectionFailed)
}
