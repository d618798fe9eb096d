// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package sql

import (
	"encoding/json"

	"github.com/xcherryio/ticksched/extensions"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

func agendaEntryToRow(entry data_models.AgendaEntry) (extensions.ScheduledTaskRow, error) {
	origin, err := json.Marshal(entry.Task.Origin)
	if err != nil {
		return extensions.ScheduledTaskRow{}, err
	}
	payload, err := json.Marshal(entry.Task.Payload)
	if err != nil {
		return extensions.ScheduledTaskRow{}, err
	}
	// nil marshals to the JSON literal null, which is what the column stores
	// for single-run tasks
	periodic, err := json.Marshal(entry.Task.Periodic)
	if err != nil {
		return extensions.ScheduledTaskRow{}, err
	}

	return extensions.ScheduledTaskRow{
		Timeline:  string(entry.Address.Timeline),
		Slot:      int64(entry.Address.Slot),
		SlotIndex: int32(entry.Address.Index),
		TaskId:    entry.Task.Id,
		TaskName:  entry.Task.Name,
		Priority:  int16(entry.Task.Priority),
		Origin:    origin,
		Payload:   payload,
		Periodic:  periodic,
		MaxWeight: int64(entry.Task.MaxWeight),
	}, nil
}

func agendaEntryFromRow(row extensions.ScheduledTaskRow) (data_models.AgendaEntry, error) {
	var origin data_models.Origin
	if err := json.Unmarshal(row.Origin, &origin); err != nil {
		return data_models.AgendaEntry{}, err
	}
	var payload data_models.CallRef
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		return data_models.AgendaEntry{}, err
	}
	var periodic *data_models.Periodic
	if err := json.Unmarshal(row.Periodic, &periodic); err != nil {
		return data_models.AgendaEntry{}, err
	}

	return data_models.AgendaEntry{
		Address: data_models.TaskAddress{
			Timeline: data_models.Timeline(row.Timeline),
			Slot:     data_models.Slot(row.Slot),
			Index:    int(row.SlotIndex),
		},
		Task: data_models.ScheduledTask{
			Id:        row.TaskId,
			Name:      row.TaskName,
			Priority:  uint8(row.Priority),
			Origin:    origin,
			Payload:   payload,
			MaxWeight: data_models.Weight(row.MaxWeight),
			Periodic:  periodic,
		},
	}, nil
}

func nameEntryToRow(entry data_models.NameEntry) extensions.TaskNameRow {
	return extensions.TaskNameRow{
		TaskName:  entry.Name,
		Timeline:  string(entry.Address.Timeline),
		Slot:      int64(entry.Address.Slot),
		SlotIndex: int32(entry.Address.Index),
	}
}

func nameEntryFromRow(row extensions.TaskNameRow) data_models.NameEntry {
	return data_models.NameEntry{
		Name: row.TaskName,
		Address: data_models.TaskAddress{
			Timeline: data_models.Timeline(row.Timeline),
			Slot:     data_models.Slot(row.Slot),
			Index:    int(row.SlotIndex),
		},
	}
}

func retryEntryToRow(entry data_models.RetryEntry) extensions.RetryPolicyRow {
	return extensions.RetryPolicyRow{
		Timeline:         string(entry.Address.Timeline),
		Slot:             int64(entry.Address.Slot),
		SlotIndex:        int32(entry.Address.Index),
		TotalRetries:     int32(entry.Config.TotalRetries),
		RemainingRetries: int32(entry.Config.Remaining),
		RetryPeriod:      int64(entry.Config.Period),
	}
}

func retryEntryFromRow(row extensions.RetryPolicyRow) data_models.RetryEntry {
	return data_models.RetryEntry{
		Address: data_models.TaskAddress{
			Timeline: data_models.Timeline(row.Timeline),
			Slot:     data_models.Slot(row.Slot),
			Index:    int(row.SlotIndex),
		},
		Config: data_models.RetryConfig{
			TotalRetries: uint32(row.TotalRetries),
			Remaining:    uint32(row.RemainingRetries),
			Period:       data_models.Slot(row.RetryPeriod),
		},
	}
}

func cursorsToRow(timeline data_models.Timeline, cursors data_models.TrackCursors, current data_models.Slot) extensions.TrackCursorsRow {
	row := extensions.TrackCursorsRow{
		Timeline:      string(timeline),
		LastProcessed: int64(cursors.LastProcessed),
		CurrentSlot:   int64(current),
	}
	if cursors.IncompleteSince != nil {
		inc := int64(*cursors.IncompleteSince)
		row.IncompleteSince = &inc
	}
	return row
}

func cursorsFromRow(row extensions.TrackCursorsRow) (data_models.TrackCursors, data_models.Slot) {
	cursors := data_models.TrackCursors{
		LastProcessed: data_models.Slot(row.LastProcessed),
	}
	if row.IncompleteSince != nil {
		inc := data_models.Slot(*row.IncompleteSince)
		cursors.IncompleteSince = &inc
	}
	return cursors, data_models.Slot(row.CurrentSlot)
}
