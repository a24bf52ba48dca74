package persona

// Store exposes persona retrieval for the controller and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	// Resolve returns the persona for id, defaulting to the general persona
	// when the key is unknown or empty. It never fails.
	Resolve(id string) Persona
}

// MemoryStore implements Store with a static in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

func (s *MemoryStore) Resolve(id string) Persona {
	if p, ok := s.FindByID(id); ok {
		return p
	}
	if p, ok := s.FindByID(GeneralID); ok {
		return p
	}
	// Seed always contains the general persona; an empty store is a
	// programming error but still must not crash the conversation.
	if len(s.items) > 0 {
		return s.items[0]
	}
	return Persona{ID: GeneralID}
}
