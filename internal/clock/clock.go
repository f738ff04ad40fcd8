// Package clock abstracts time lookup so schedulers can be tested
// without sleeping.
package clock

import "time"

// Clock supplies the current time. Implementations must be safe for
// concurrent use.
type Clock interface {
	Now() time.Time
}
