package namestore

import (
	"context"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/openHPI/namestore/pkg/logging"
	"github.com/openHPI/namestore/pkg/monitoring"
)

var log = logging.GetLogger("namestore")

const nameSeparator = " "

// EventType is an enum type to declare the different causes of a monitoring event.
type EventType string

const (
	Creation     EventType = "creation"
	Deletion     EventType = "deletion"
	Modification EventType = "modification"
	Replacement  EventType = "replacement"
	Periodically EventType = "periodically"
)

// WriteCallback is called before an event gets monitored.
// Iff eventType is Replacement or Periodically no name is provided.
// The callback runs while the store is locked and must not call the store.
type WriteCallback func(p *write.Point, name string, eventType EventType)

var _ Store = (*NameStore)(nil)

// NameStore stores full names in the local application memory.
// All operations are safe for concurrent use.
type NameStore struct {
	sync.RWMutex
	names       []string
	measurement string
	callback    WriteCallback
}

// NewNameStore returns an empty NameStore.
func NewNameStore() *NameStore {
	return &NameStore{names: []string{}}
}

// NewMonitoredNameStore returns an empty NameStore whose write operations are monitored in the passed measurement.
// Iff callback is set, it will be called on a write operation.
// Iff additionalEvents is not zero, the size is additionally reported in that interval until ctx is done.
func NewMonitoredNameStore(
	measurement string, callback WriteCallback, additionalEvents time.Duration, ctx context.Context,
) *NameStore {
	s := &NameStore{
		names:       []string{},
		measurement: measurement,
		callback:    callback,
	}
	if additionalEvents != 0 {
		go s.periodicallySendMonitoringData(additionalEvents, ctx)
	}
	return s
}

func (s *NameStore) Size() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.names)
}

func (s *NameStore) SetNames(names []string) {
	s.Lock()
	defer s.Unlock()
	s.names = append(make([]string, 0, len(names)), names...)
	s.sendMonitoringData("", Replacement, len(s.names))
}

func (s *NameStore) Clear() {
	s.Lock()
	defer s.Unlock()
	for _, name := range s.names {
		s.sendMonitoringData(name, Deletion, 0)
	}
	s.names = []string{}
}

func (s *NameStore) FindAll() []string {
	s.RLock()
	defer s.RUnlock()
	return append(make([]string, 0, len(s.names)), s.names...)
}

func (s *NameStore) Find(fullName string) (string, bool) {
	s.RLock()
	defer s.RUnlock()
	return s.unsafeFind(fullName)
}

func (s *NameStore) Add(fullName string) bool {
	s.Lock()
	defer s.Unlock()
	if existing, ok := s.unsafeFind(fullName); ok {
		log.WithField("name", logging.RemoveNewlineSymbol(existing)).Trace("Name already stored")
		return false
	}
	s.names = append(s.names, fullName)
	s.sendMonitoringData(fullName, Creation, len(s.names))
	return true
}

func (s *NameStore) FindByFirstName(firstName string) []string {
	return s.filter(func(first, _ string) bool {
		return first == firstName
	})
}

func (s *NameStore) FindByLastName(lastName string) []string {
	return s.filter(func(_, last string) bool {
		return last == lastName
	})
}

func (s *NameStore) Update(original, updatedName string) bool {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.unsafeFind(original); !ok {
		return false
	}
	// Changing only the case of a name does not collide with the name itself.
	if existing, ok := s.unsafeFind(updatedName); ok && !strings.EqualFold(existing, original) {
		log.WithField("name", logging.RemoveNewlineSymbol(existing)).Trace("Updated name already stored")
		return false
	}

	for i, name := range s.names {
		if strings.EqualFold(name, original) {
			s.names[i] = updatedName
			s.sendMonitoringData(updatedName, Modification, len(s.names))
		}
	}
	return true
}

func (s *NameStore) Remove(fullName string) bool {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.unsafeFind(fullName); !ok {
		return false
	}

	remaining := make([]string, 0, len(s.names))
	var removed []string
	for _, name := range s.names {
		if strings.EqualFold(name, fullName) {
			removed = append(removed, name)
		} else {
			remaining = append(remaining, name)
		}
	}
	s.names = remaining
	for _, name := range removed {
		s.sendMonitoringData(name, Deletion, len(s.names))
	}
	return true
}

// unsafeFind requires the caller to hold the lock.
func (s *NameStore) unsafeFind(fullName string) (string, bool) {
	for _, name := range s.names {
		if strings.EqualFold(name, fullName) {
			return name, true
		}
	}
	return "", false
}

// filter returns all names for which matches returns true. Names without a separator are skipped.
func (s *NameStore) filter(matches func(first, last string) bool) []string {
	s.RLock()
	defer s.RUnlock()
	found := make([]string, 0)
	for _, name := range s.names {
		first, last, ok := strings.Cut(name, nameSeparator)
		if !ok {
			log.WithField("name", logging.RemoveNewlineSymbol(name)).Debug("Skipping name without separator")
			continue
		}
		if matches(first, last) {
			found = append(found, name)
		}
	}
	return found
}

func (s *NameStore) sendMonitoringData(name string, eventType EventType, count int) {
	if s.measurement != "" {
		dataPoint := influxdb2.NewPointWithMeasurement(s.measurement)
		if name != "" {
			dataPoint.AddTag("name", name)
		}
		dataPoint.AddTag("event_type", string(eventType))
		dataPoint.AddField("count", count)

		if s.callback != nil {
			s.callback(dataPoint, name, eventType)
		}

		monitoring.WriteInfluxPoint(dataPoint)
	}
}

func (s *NameStore) periodicallySendMonitoringData(d time.Duration, ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
			s.RLock()
			s.sendMonitoringData("", Periodically, len(s.names))
			s.RUnlock()
		}
	}
}
