// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// retryRegistry maps the address of a task as most recently scheduled to its
// retry policy. The policy is re-keyed whenever the task moves and moves to
// the retry clone when a run fails.
type retryRegistry struct {
	byAddress map[data_models.TaskAddress]data_models.RetryConfig
}

func newRetryRegistry() *retryRegistry {
	return &retryRegistry{byAddress: map[data_models.TaskAddress]data_models.RetryConfig{}}
}

func (r *retryRegistry) set(addr data_models.TaskAddress, cfg data_models.RetryConfig) {
	r.byAddress[addr] = cfg
}

func (r *retryRegistry) get(addr data_models.TaskAddress) (data_models.RetryConfig, bool) {
	cfg, ok := r.byAddress[addr]
	return cfg, ok
}

// take removes and returns the policy for addr
func (r *retryRegistry) take(addr data_models.TaskAddress) (data_models.RetryConfig, bool) {
	cfg, ok := r.byAddress[addr]
	if ok {
		delete(r.byAddress, addr)
	}
	return cfg, ok
}

func (r *retryRegistry) cancel(addr data_models.TaskAddress) {
	delete(r.byAddress, addr)
}

func (r *retryRegistry) size() int {
	return len(r.byAddress)
}
