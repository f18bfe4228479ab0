package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Bangkok")
	if err != nil {
		panic(err)
	}
}

// force timezone to be in Bangkok because CI runners executing the
// pipeline can end up anywhere which will cause disturbances when
// manipulating dates based on <time.Time>.Year()/Month()/Day()/Hour()/...
func Now() time.Time {
	return time.Now().In(Location)
}
