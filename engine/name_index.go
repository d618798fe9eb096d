// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// nameIndex maps stable task names to their current address. All internal
// dispatch operates on addresses; names only exist at the public boundary.
type nameIndex struct {
	byName map[string]data_models.TaskAddress
}

func newNameIndex() *nameIndex {
	return &nameIndex{byName: map[string]data_models.TaskAddress{}}
}

func (n *nameIndex) bind(name string, addr data_models.TaskAddress) error {
	if _, ok := n.byName[name]; ok {
		return ErrNameAlreadyBound
	}
	n.byName[name] = addr
	return nil
}

func (n *nameIndex) resolve(name string) (data_models.TaskAddress, bool) {
	addr, ok := n.byName[name]
	return addr, ok
}

// rebind points an existing name at the fresh address a task received when it
// was re-inserted (reschedule, deferral, periodic renewal)
func (n *nameIndex) rebind(name string, addr data_models.TaskAddress) {
	n.byName[name] = addr
}

func (n *nameIndex) unbind(name string) {
	delete(n.byName, name)
}

func (n *nameIndex) size() int {
	return len(n.byName)
}
