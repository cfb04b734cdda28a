package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"kamailio"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name. For sqlite this is the file path (or ":memory:").
	Name string `mapstructure:"name" default:"kamailio"`
	// TimeoutSeconds bounds connection setup, reads, writes and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// ActiveWatchersTable is the table holding presence watcher rows.
	ActiveWatchersTable string `mapstructure:"active_watchers_table" default:"active_watchers"`
	// EntityTable is the table holding user entities with shared-line flags.
	EntityTable string `mapstructure:"entity_table" default:"entity"`
}
