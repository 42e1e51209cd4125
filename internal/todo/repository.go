package todo

// Repository is the storage contract. Every backend (flat file, SQLite,
// memory) persists the whole collection at once; there are no partial writes.
type Repository interface {
	// Save overwrites whatever was stored before with exactly tasks, in order.
	Save(tasks []*Task) error
	// Load returns the last saved sequence, or an empty one if nothing was saved.
	Load() ([]*Task, error)
	// Clear is Save of an empty sequence.
	Clear() error
}
