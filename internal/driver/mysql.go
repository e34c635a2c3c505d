package driver

import (
	"net"
	neturl "net/url"
	"slices"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

func init() {
	Register(mysqlDriver{}, "mariadb", "com.mysql.jdbc.Driver", "com.mysql.cj.jdbc.Driver", "org.mariadb.jdbc.Driver")
}

// mysqlDriver connects through go-sql-driver/mysql.
type mysqlDriver struct{}

func (mysqlDriver) Name() string      { return "mysql" }
func (mysqlDriver) SQLDriver() string { return "mysql" }

// DSN accepts mysql:// URLs (including JDBC ones) and native
// user:pass@tcp(host:port)/db DSNs.
func (mysqlDriver) DSN(url, username, password string) (string, error) {
	url = strings.TrimSpace(trimJDBC(url))

	var (
		cfg *mysqldriver.Config
		err error
	)
	if rest, ok := trimScheme(url, "mysql://", "mariadb://"); ok {
		cfg, err = mysqlConfigFromURL(rest)
	} else {
		cfg, err = mysqldriver.ParseDSN(url)
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrInvalidURL, err, "invalid mysql URL").
			WithDriver("mysql").
			With("url", RedactURL(url))
	}

	if username != "" {
		cfg.User = username
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.AllowNativePasswords = true

	return cfg.FormatDSN(), nil
}

// mysqlParams are the DSN parameters go-sql-driver/mysql understands itself.
// Any other key is sent to the server as a session variable.
var mysqlParams = map[string]bool{
	"allowAllFiles":            true,
	"allowCleartextPasswords":  true,
	"allowFallbackToPlaintext": true,
	"allowNativePasswords":     true,
	"allowOldPasswords":        true,
	"charset":                  true,
	"checkConnLiveness":        true,
	"clientFoundRows":          true,
	"collation":                true,
	"columnsWithAlias":         true,
	"connectionAttributes":     true,
	"interpolateParams":        true,
	"loc":                      true,
	"maxAllowedPacket":         true,
	"multiStatements":          true,
	"parseTime":                true,
	"readTimeout":              true,
	"rejectReadOnly":           true,
	"serverPubKey":             true,
	"timeTruncate":             true,
	"timeout":                  true,
	"tls":                      true,
	"writeTimeout":             true,
}

// mysqlConfigFromURL parses the part of a mysql:// URL after the scheme.
// Driver parameters go through mysqldriver.ParseDSN so typed options such
// as parseTime are applied. Lower-case keys are kept as session variables;
// other camelCase keys are Connector/J options and are dropped.
func mysqlConfigFromURL(rest string) (*mysqldriver.Config, error) {
	u, err := neturl.Parse("mysql://" + rest)
	if err != nil {
		return nil, err
	}

	cfg := mysqldriver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" && u.Host != "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	params := make(map[string]string)
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		v := values[0]
		switch {
		case key == "user":
			cfg.User = v
		case key == "password":
			cfg.Passwd = v
		case key == "useSSL":
			if strings.EqualFold(v, "false") {
				params["tls"] = "false"
			} else {
				params["tls"] = "true"
			}
		case mysqlParams[key], strings.ToLower(key) == key:
			params[key] = v
		}
	}

	if len(params) == 0 {
		return cfg, nil
	}
	return mysqldriver.ParseDSN(cfg.FormatDSN() + "?" + encodeMySQLParams(params))
}

// encodeMySQLParams joins params in key order. Only values the driver
// unescapes are escaped; the rest are passed through as written.
func encodeMySQLParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		if !mysqlParams[k] || k == "loc" || k == "serverPubKey" {
			v = neturl.QueryEscape(v)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, "&")
}
