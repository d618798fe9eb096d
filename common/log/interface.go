// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"github.com/xcherryio/ticksched/common/log/tag"
)

// Logger is our abstraction for logging
// Usage examples:
//
//	 1) logger = logger.WithTags(
//	         tag.Timeline("tick"),
//	         tag.Slot(42))
//	    logger.Info("task deferred")
//	 2) logger.Info("task deferred",
//	         tag.Timeline("tick"),
//	         tag.Slot(42))
//	 Note: msg should be static, it is not recommended to use fmt.Sprintf() for msg.
//	       Anything dynamic should be tagged.
type Logger interface {
	Debug(msg string, tags ...tag.Tag)
	Info(msg string, tags ...tag.Tag)
	Warn(msg string, tags ...tag.Tag)
	Error(msg string, tags ...tag.Tag)
	Fatal(msg string, tags ...tag.Tag)
	WithTags(tags ...tag.Tag) Logger
}
