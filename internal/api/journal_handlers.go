package api

import (
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/service"
)

var journals = resource[internal.JournalEntry, service.JournalRequest]{
	label:       "Journal entry",
	repo:        App.Journals,
	create:      service.CreateJournalEntry,
	requestFrom: service.JournalRequestFrom,
	update:      service.UpdateJournalEntry,
}
