package appconf

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// EnvFlagToEnvironment maps a lower-case flag value to an Environment.
// Anything unrecognised is Development.
func EnvFlagToEnvironment(env string) Environment {
	switch env {
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// Config holds the HTTP facing settings of the application.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string
	RateLimit int // requests per second per API key
	// DefaultNumPaths is used by route searches that do not ask for a number of paths.
	DefaultNumPaths int
	Verbose         bool
}
