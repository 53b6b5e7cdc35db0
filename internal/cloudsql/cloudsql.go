package cloudsql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoDatabase is returned when neither a URL nor a Cloud SQL instance is configured.
var ErrNoDatabase = errors.New("neither DATABASE_URL nor INSTANCE_CONNECTION_NAME is set")

// Settings are the datastore connection inputs as read from the environment.
//
// For Cloud Run with Cloud SQL set InstanceConnectionName (project:region:instance),
// User, Name and optionally Password; the instance socket mounted under
// /cloudsql is used. Otherwise set DatabaseURL directly.
type Settings struct {
	DatabaseURL            string
	InstanceConnectionName string
	User                   string
	Password               string
	Name                   string
}

// Configured reports whether any datastore location is set.
func (s Settings) Configured() bool {
	return s.DatabaseURL != "" || s.InstanceConnectionName != ""
}

// BuildDatabaseURL returns the connection string, preferring DatabaseURL.
func BuildDatabaseURL(s Settings) (string, error) {
	if s.DatabaseURL != "" {
		return s.DatabaseURL, nil
	}

	if s.InstanceConnectionName == "" {
		return "", ErrNoDatabase
	}

	if s.User == "" || s.Name == "" {
		return "", fmt.Errorf("DB_USER and DB_NAME must be set when using INSTANCE_CONNECTION_NAME")
	}

	socketPath := "/cloudsql/" + s.InstanceConnectionName

	if s.Password != "" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			socketPath, s.User, s.Password, s.Name), nil
	}

	// IAM authentication, no password.
	return fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable",
		socketPath, s.User, s.Name), nil
}

// Describe returns connection details safe for logging.
func Describe(s Settings) map[string]string {
	config := make(map[string]string)

	switch {
	case s.DatabaseURL != "":
		config["connection_type"] = "direct"
		config["database_url"] = RedactPassword(s.DatabaseURL)
	case s.InstanceConnectionName != "":
		config["connection_type"] = "cloud_sql"
		config["instance"] = s.InstanceConnectionName
		config["user"] = s.User
		config["database"] = s.Name
		config["socket_path"] = "/cloudsql/" + s.InstanceConnectionName
	default:
		config["connection_type"] = "none"
	}

	return config
}

var keywordPassword = regexp.MustCompile(`password=\S+`)

// RedactPassword masks the password in a URL or keyword/value connection string.
func RedactPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgresql://") || strings.HasPrefix(connStr, "postgres://") {
		at := strings.LastIndex(connStr, "@")
		scheme := strings.Index(connStr, "://") + len("://")
		if at > scheme {
			userinfo := connStr[scheme:at]
			if colon := strings.Index(userinfo, ":"); colon >= 0 {
				return connStr[:scheme] + userinfo[:colon] + ":***" + connStr[at:]
			}
		}
		return connStr
	}
	return keywordPassword.ReplaceAllString(connStr, "password=***")
}
