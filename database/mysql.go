package database

import (
	"context"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"ecomfunnel/config"
	"ecomfunnel/logger"
)

// MySQLDSN builds a go-sql-driver DSN from cfg with utf8mb4 and parsed times.
func MySQLDSN(cfg config.LoaderConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.ResolvedPort()))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	mc.Collation = "utf8mb4_unicode_ci"
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc.FormatDSN()
}

func NewMySQLDB(ctx context.Context, cfg config.LoaderConfig, log *logger.Logger) (*DBClient, error) {
	return openSQL(ctx, "mysql", MySQLDSN(cfg), cfg, log)
}
