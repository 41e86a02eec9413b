package models

const (
	DefaultNearestCount = 10
	MaxNearestCount     = 250
)

// Search radii are in light years.
const (
	DefaultSearchRadius = 10.0
	MaxSearchRadius     = 5000.0
)

const (
	DefaultNumPaths = 3
	DefaultK        = 3
)
