package util

import "time"

// Now devolve o instante atual em UTC (timestamps persistidos sempre em UTC).
func Now() time.Time {
	return time.Now().UTC()
}
