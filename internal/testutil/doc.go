// Package testutil provides test helpers for sqlfixture.
//
// This package includes:
//   - Unique in-memory SQLite URLs and handles
//   - Fixture setup with automatic cleanup
//   - SQL and error assertion helpers
//   - Container-backed PostgreSQL and MySQL (integration build tag)
//
// # Build Tags
//
// Container tests need Docker and run with:
//
//	go test ./... -tags=integration
//
// # Environment Variables
//
// Set these to reuse running servers instead of starting containers:
//
//	POSTGRES_URL - PostgreSQL connection URL
//	MYSQL_URL    - MySQL connection URL or DSN
//
// # Example Usage
//
//	func TestMyFeature(t *testing.T) {
//	    fx := testutil.NewFixture(t)
//	    testutil.Connect(t, fx, "testdb1")
//	    // ... test code
//	}
package testutil
