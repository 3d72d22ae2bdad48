// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// Default quota shown before the server has reported anything.
const (
	DefaultDailyLimit = 10
)

// RateLimitStatus is the server-reported daily quota.
//
// Remaining is server-authoritative. It is stored as received and never
// recomputed from Limit and Used.
type RateLimitStatus struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// DefaultRateLimit returns the status used when no session is active.
func DefaultRateLimit() RateLimitStatus {
	return RateLimitStatus{
		Limit:     DefaultDailyLimit,
		Used:      0,
		Remaining: DefaultDailyLimit,
	}
}

// Exhausted reports whether the server says no requests remain.
func (r RateLimitStatus) Exhausted() bool {
	return r.Remaining <= 0
}

// String formats the status for status bars, e.g. "3/10 used, 7 left".
func (r RateLimitStatus) String() string {
	return fmt.Sprintf("%d/%d used, %d left", r.Used, r.Limit, r.Remaining)
}
