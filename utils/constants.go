// File: utils/constants.go
package utils

import "time"

// DoctorCachePrefix is the prefix used for Redis doctor profile cache keys.
const DoctorCachePrefix = "doctor:"

// DoctorCacheTTL is the time-to-live for doctor profile cache entries.
const DoctorCacheTTL = 10 * time.Minute

// GridCachePrefix is the prefix used for Redis slot grid cache keys.
const GridCachePrefix = "grid:"

// GridCacheTTL is the time-to-live for slot grid cache entries. Grids are
// deterministic for a fixed doctor configuration, so a short TTL only bounds
// how long an availability edit takes to show up.
const GridCacheTTL = 5 * time.Minute

// TicketCachePrefix is the prefix used for walk-in ticket re-display keys.
const TicketCachePrefix = "ticket:"

// TicketCacheTTL is how long a kiosk can re-fetch a just-issued ticket.
const TicketCacheTTL = 30 * time.Minute
