package storage

import "deployScope/internal/model"

// Storage defines a sink for the discovery journal.
type Storage interface {
	PutDiscoveries(records []model.DiscoveryRecord) error
}

// Tee fans every write out to all sinks. The first error wins but later
// sinks still receive the records.
func Tee(sinks ...Storage) Storage {
	return teeStorage(sinks)
}

type teeStorage []Storage

func (t teeStorage) PutDiscoveries(records []model.DiscoveryRecord) error {
	var first error
	for _, sink := range t {
		if err := sink.PutDiscoveries(records); err != nil && first == nil {
			first = err
		}
	}
	return first
}
