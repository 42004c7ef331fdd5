package constants

// Session constants
const (
	// SessionCookieName is the cookie carrying the opaque session id
	SessionCookieName = "sid"

	// SessionContextKey is the gin context key holding the loaded session
	SessionContextKey = "session"

	// RedisSessionPrefix namespaces session keys in Redis
	RedisSessionPrefix = "student-connect:session:"
)

// Validation constants
const (
	SexMale   = "M"
	SexFemale = "F"

	LevelUndergraduate = "Undergraduate"
	LevelGraduate      = "Graduate"
)

// Seed constants
const (
	// DefaultSeedCount is the number of students, schools, posts and comments
	// generated by the seed command when no count is given
	DefaultSeedCount = 1000

	// MaxSeedWorkers bounds concurrent inserts during seeding
	MaxSeedWorkers = 8
)
