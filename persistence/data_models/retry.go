// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package data_models

// RetryConfig is the retry policy attached to the address of a task as most
// recently scheduled. It is bookkeeping only and never occupies agenda slots
// by itself; a failed run materializes an unnamed, non-periodic retry clone.
type RetryConfig struct {
	// TotalRetries is the configured retry budget
	TotalRetries uint32 `json:"totalRetries"`
	// Remaining is how many retries are left for the current attempt chain
	Remaining uint32 `json:"remaining"`
	// Period is how many slots after a failed run the clone is scheduled
	Period Slot `json:"period"`
}
