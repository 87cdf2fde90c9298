package testdb

import "net/url"

// maskDatabaseURL hides the password of a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return "[unparseable database url]"
	}
	return u.Redacted()
}
