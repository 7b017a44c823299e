package accounts

import "time"

// IsWithinThresholdPeriod reports whether issuedAt still falls inside the
// trailing window described by pattern, e.g. "24h". A pending token stays
// consumable while this holds for its issued-at timestamp.
func IsWithinThresholdPeriod(issuedAt time.Time, pattern string) (bool, error) {
	window, err := time.ParseDuration(pattern)
	if err != nil {
		return false, err
	}

	cutoff := time.Now().Add(-window)
	return issuedAt.After(cutoff), nil
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod; an
// issued-at outside the window means the token expired.
func IsOutsideThresholdPeriod(issuedAt time.Time, pattern string) (bool, error) {
	within, err := IsWithinThresholdPeriod(issuedAt, pattern)
	if err != nil {
		return false, err
	}

	return !within, nil
}
