// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "bestmovies"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultLogLevel     = "info"
	DefaultBaseURL      = "https://www.rottentomatoes.com"
	DefaultOMDbURL      = "http://www.omdbapi.com/"
	DefaultCachePath    = "cache.json"
	DefaultBoltPath     = "cache.db"
	DefaultDatabasePath = "bestmovies.sqlite"
	DefaultRatingSource = "Rotten Tomatoes"

	// DirectoryPath is the genre directory page, relative to the base URL.
	DirectoryPath = "/top/bestofrt/"

	// TitleSuffixLength is the length of the " (YYYY)" decoration the listing
	// appends to every title.
	TitleSuffixLength = 7
)

// Cache backends
const (
	CacheBackendFile = "file"
	CacheBackendBolt = "bolt"
)

// Console prompts and messages
const (
	GenrePrompt  = `Enter a movie genre or "exit": `
	DetailPrompt = `Choose the number for detailed information or "exit" or "back": `
	InvalidInput = "[Error] Invalid input"
	Separator    = "-----------------------------------"
	ShortRule    = "-------------------------------"
	CommandExit  = "exit"
	CommandBack  = "back"
)
