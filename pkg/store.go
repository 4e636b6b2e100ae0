package tools

import "fmt"

// Store is the transient blackboard the host framework shares between
// tools. Entries are arbitrary objects keyed by name; the Header holds
// run-scoped objects such as the detector geometry.
type Store struct {
	name    string
	entries map[string]any
	header  *Store
}

func NewStore(name string) *Store {
	return &Store{
		name:    name,
		entries: make(map[string]any),
	}
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) Set(key string, value any) {
	s.entries[key] = value
}

func (s *Store) Get(key string) (any, bool) {
	value, ok := s.entries[key]
	return value, ok
}

func (s *Store) Delete(key string) {
	delete(s.entries, key)
}

// Clear drops every per-event entry but keeps the header.
func (s *Store) Clear() {
	s.entries = make(map[string]any)
}

// Header returns the run-scoped section of the store, creating it on
// first use.
func (s *Store) Header() *Store {
	if s.header == nil {
		s.header = NewStore(s.name + "/header")
	}
	return s.header
}

// GetFromStore retrieves a typed entry. A missing key and a type
// mismatch are reported as distinct errors.
func GetFromStore[T any](s *Store, key string) (T, error) {
	var zero T
	value, ok := s.entries[key]
	if !ok {
		return zero, &ErrStoreKey{Store: s.name, Key: key}
	}
	typed, ok := value.(T)
	if !ok {
		return zero, &ErrStoreType{
			Store: s.name,
			Key:   key,
			Want:  fmt.Sprintf("%T", zero),
			Got:   fmt.Sprintf("%T", value),
		}
	}
	return typed, nil
}

// DataModel holds the named stores the framework passes to every tool.
type DataModel struct {
	Stores map[string]*Store
}

func NewDataModel() *DataModel {
	return &DataModel{Stores: make(map[string]*Store)}
}

// Store returns a named store, creating it if it does not exist yet.
func (d *DataModel) Store(name string) *Store {
	s, ok := d.Stores[name]
	if !ok {
		s = NewStore(name)
		d.Stores[name] = s
	}
	return s
}

// Store names used by the tools in this repository.
const (
	ANNIEEventStore = "ANNIEEvent"
	RecoEventStore  = "RecoEvent"
)

// Well-known store keys.
const (
	KeyRunNumber        = "RunNumber"
	KeySubrunNumber     = "SubrunNumber"
	KeyEventNumber      = "EventNumber"
	KeyADCHits          = "RecoADCHits"
	KeyMinibufferLabels = "MinibufferLabels"
	KeyHeftyInfo        = "HeftyInfo"
	KeyBeamStatus       = "BeamStatus"
	KeyGeometry         = "AnnieGeometry"
)
