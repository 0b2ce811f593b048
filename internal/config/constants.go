package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./perlego-sync.db"

	// DefaultAPIURL is the Perlego API root
	DefaultAPIURL = "https://api.perlego.com"

	// DefaultFolder is the vault folder documents are written into
	DefaultFolder = "Perlego"

	// DefaultSyncSchedule runs the import every 6 hours
	DefaultSyncSchedule = "0 */6 * * *"
)
