// SPDX-License-Identifier: Apache-2.0

package connstr

import (
	"net/url"
	"strings"

	"github.com/xataio/perfrun/pkg/credentials"
)

// SQLServer builds a go-mssqldb connection URL from credentials. The server
// may carry an instance name ("host\instance") or a port ("host:port").
func SQLServer(c *credentials.Credentials) string {
	host, instance, _ := strings.Cut(c.Server, `\`)

	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(c.UID, c.PWD),
		Host:   host,
	}
	if instance != "" {
		u.Path = "/" + instance
	}

	q := u.Query()
	if c.Database != "" {
		q.Set("database", c.Database)
	}
	q.Set("app name", "perfrun")
	u.RawQuery = q.Encode()

	return u.String()
}

// Postgres builds a lib/pq connection URL from credentials.
func Postgres(c *credentials.Credentials, sslMode string) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.UID, c.PWD),
		Host:   c.Server,
		Path:   "/" + c.Database,
	}

	if sslMode != "" {
		q := u.Query()
		q.Set("sslmode", sslMode)
		u.RawQuery = q.Encode()
	}

	return u.String()
}
