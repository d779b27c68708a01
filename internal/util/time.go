package util

import "time"

var opsLocation *time.Location

func init() {
	var err error
	opsLocation, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		opsLocation = time.FixedZone("PST", -8*60*60)
	}
}

// OpsLocation returns the operational timezone all relative date phrases are
// anchored in.
func OpsLocation() *time.Location {
	return opsLocation
}

// NowOps returns the current wall clock in the operational timezone.
func NowOps() time.Time {
	return time.Now().In(opsLocation)
}
