package postgres

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Driver names registered with database/sql.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

const defaultConnectTimeout = 10 * time.Second

// Params holds the connection target. Params are copied into a Handle and never change after.
type Params struct {
	Database string
	Host     string
	Port     string
	User     string
	Password string

	// Driver selects the database/sql driver, DriverPQ when empty.
	Driver         string
	SSLMode        string
	ConnectTimeout time.Duration
}

func (p Params) driver() string {
	if p.Driver == "" {
		return DriverPQ
	}
	return p.Driver
}

func (p Params) connectTimeout() time.Duration {
	if p.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return p.ConnectTimeout
}

// DSN builds a keyword/value connection string understood by both lib/pq and pgx.
func (p Params) DSN() string {
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{
		"host=" + quoteDSNValue(host),
		"port=" + quoteDSNValue(port),
		"dbname=" + quoteDSNValue(p.Database),
		"sslmode=" + quoteDSNValue(sslmode),
	}
	if p.User != "" {
		parts = append(parts, "user="+quoteDSNValue(p.User))
	}
	if p.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(p.Password))
	}
	parts = append(parts, fmt.Sprintf("connect_timeout=%d", connectTimeoutSeconds(p.connectTimeout())))
	return strings.Join(parts, " ")
}

// connectTimeoutSeconds rounds up to whole seconds. libpq reads 0 as no timeout.
func connectTimeoutSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

// quoteDSNValue single-quotes values that are empty or contain spaces, quotes or backslashes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
