package sqlx

import (
	"fmt"
	"strings"
)

const (
	UserKey       = "${user}"
	PasswordKey   = "${password}"
	HostKey       = "${host}"
	dsKey         = "datasource"
	defaultDsName = "default"
)

type dataSource struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Host     string `mapstructure:"host" yaml:"host"`
	URL      string `mapstructure:"url" yaml:"url"`
}

// DSNChecked returns the final connection string for sql.Open and validates placeholder usage.
//
// Go database drivers don't share a single DSN format, so `url` is required and must be a
// driver-specific DSN/URI (optionally containing placeholders).
//
// If ds.URL contains placeholders (${user}, ${password}, ${host}), the corresponding field must be
// non-empty, otherwise an error is returned.
func (ds dataSource) DSNChecked() (string, error) {
	if strings.TrimSpace(ds.URL) == "" {
		return "", fmt.Errorf("dsn requires url")
	}
	if strings.Contains(ds.URL, UserKey) && ds.User == "" {
		return "", fmt.Errorf("dsn requires user")
	}
	if strings.Contains(ds.URL, PasswordKey) && ds.Password == "" {
		return "", fmt.Errorf("dsn requires password")
	}
	if strings.Contains(ds.URL, HostKey) && ds.Host == "" {
		return "", fmt.Errorf("dsn requires host")
	}
	return ds.DSN(), nil
}

// DSN performs *only* string substitution of ${user}, ${password} and ${host} on ds.URL.
func (ds dataSource) DSN() string {
	dsn := strings.ReplaceAll(ds.URL, UserKey, ds.User)
	dsn = strings.ReplaceAll(dsn, PasswordKey, ds.Password)
	return strings.ReplaceAll(dsn, HostKey, ds.Host)
}
