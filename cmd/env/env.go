package env

const (
	// Prefix is the prefix of every environment variable read by the CLI
	Prefix = "NBP_"

	// DBURLSuffix names the Postgres connection string variable
	DBURLSuffix = "DB_URL"
)
