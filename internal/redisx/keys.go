package redisx

import "time"

const (
	// Cart hash per user: cart:{user_id}, field = sweet_id, value = quantity.
	KeyCart = "cart:%s"

	// Pattern for sweeping every cart in one SCAN pass.
	KeyCartPattern = "cart:*"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
