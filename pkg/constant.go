package pkg

const (
	// sentinel insertion cost for infeasible (request, vehicle) pairs
	UNLIMITED_FLOAT       float64 = 1e16
	UNLIMITED_FLOAT_BOUND float64 = UNLIMITED_FLOAT + 100.0

	WEIGHT_FLOOR    = 1e-8
	MIN_TEMPERATURE = 1e-10

	ACCEPTED_SET_MAXLEN = 25000

	NORMALIZATION_EPSILON = 1e-6
)

const (
	DEBUG = false
)
