package kvstore

// Config holds configuration for the key-value table store.
type Config struct {
	// Backend selects the implementation: redis, bolt or object.
	Backend string `mapstructure:"backend" default:"bolt" validate:"oneof=redis bolt object"`
	// Prefix namespaces redis keys and object names.
	Prefix string `mapstructure:"prefix" default:"tablesync"`
	// RedisAddr is the host:port of the redis server.
	RedisAddr string `mapstructure:"redis_addr" default:"localhost:6379"`
	// RedisUsername is the ACL user, empty for the default user.
	RedisUsername string `mapstructure:"redis_username" default:""`
	// RedisPassword is the redis password.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the logical redis database.
	RedisDB int `mapstructure:"redis_db" default:"0" validate:"min=0"`
	// BoltPath is the bbolt file used by the bolt backend.
	BoltPath string `mapstructure:"bolt_path" default:"tablesync.db"`
	// TimeoutSeconds bounds connection setup and file locking.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"min=0"`
}
