package offline

import "errors"

var (
	ErrQueued         = errors.New("action queued for replay")
	ErrOfflineNoCache = errors.New("no connection and no cached data")
)
