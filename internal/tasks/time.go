package tasks

import "time"

// now returns the current UTC time. Package-level var for test injection.
var now = func() time.Time { return time.Now().UTC() }
