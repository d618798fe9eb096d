// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/engine"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// loggingDispatcher is the standalone-runner dispatcher: it records each due
// call in the log. Embedding runtimes supply their own CallDispatcher instead.
type loggingDispatcher struct {
	logger log.Logger
}

var _ engine.CallDispatcher = (*loggingDispatcher)(nil)

func newLoggingDispatcher(logger log.Logger) *loggingDispatcher {
	return &loggingDispatcher{logger: logger}
}

func (d *loggingDispatcher) Dispatch(_ context.Context, origin data_models.Origin, call []byte) error {
	d.logger.Info("dispatching scheduled call",
		tag.Value(string(call)),
		tag.Message(string(origin.Kind)))
	return nil
}

// emptyPreimageStore resolves nothing; hashed payloads degrade to the
// call-unavailable signal in standalone mode.
type emptyPreimageStore struct{}

var _ engine.PreimageStore = emptyPreimageStore{}

func (emptyPreimageStore) Resolve(_ context.Context, _ []byte, _ uint32) ([]byte, bool) {
	return nil, false
}
