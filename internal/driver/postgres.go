package driver

import (
	neturl "net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

func init() {
	Register(postgresDriver{}, "postgresql", "pq", "org.postgresql.Driver")
}

// postgresDriver connects through lib/pq.
type postgresDriver struct{}

func (postgresDriver) Name() string      { return "postgres" }
func (postgresDriver) SQLDriver() string { return "postgres" }

// DSN accepts postgres:// URLs, JDBC postgresql: URLs and key=value DSNs.
func (postgresDriver) DSN(url, username, password string) (string, error) {
	url = strings.TrimSpace(trimJDBC(url))

	// Every scheme spelling becomes postgres://, including postgresql:host/db.
	if rest, ok := trimScheme(url, "postgresql://", "postgres://", "postgresql:", "postgres:"); ok {
		url = "postgres://" + strings.TrimPrefix(rest, "//")
	}

	if !strings.Contains(url, "://") {
		return keyValueDSN(url, username, password), nil
	}

	u, err := neturl.Parse(url)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrInvalidURL, err, "invalid postgres URL").
			WithDriver("postgres").
			With("url", RedactURL(url))
	}

	switch {
	case username != "" && password != "":
		u.User = neturl.UserPassword(username, password)
	case username != "":
		u.User = neturl.User(username)
	case password != "" && u.User != nil:
		u.User = neturl.UserPassword(u.User.Username(), password)
	}

	return u.String(), nil
}

// keyValueDSN appends credentials to a "host=... dbname=..." style DSN.
func keyValueDSN(dsn, username, password string) string {
	parts := make([]string, 0, 3)
	if dsn != "" {
		parts = append(parts, dsn)
	}
	if username != "" {
		parts = append(parts, "user="+quotePQ(username))
	}
	if password != "" {
		parts = append(parts, "password="+quotePQ(password))
	}
	return strings.Join(parts, " ")
}

// quotePQ quotes a key=value DSN value the way libpq expects.
func quotePQ(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
