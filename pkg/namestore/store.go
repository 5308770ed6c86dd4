package namestore

// Store holds an ordered list of full names in the format "<firstName> <lastName>".
// Full names are unique when compared case-insensitively as long as they are only added with Add.
type Store interface {
	// Size returns the number of stored full names.
	Size() int

	// SetNames replaces all stored names with a copy of the passed names.
	// A nil slice empties the store. Duplicates are not filtered.
	SetNames(names []string)

	// Clear removes all names from the store.
	Clear()

	// FindAll returns a copy of all names in their current order.
	FindAll() []string

	// Find returns the first name that equals fullName case-insensitively.
	// Iff no such name exists, ok is false.
	Find(fullName string) (name string, ok bool)

	// Add appends fullName unless Find already matches it.
	// It returns true iff the name was added.
	Add(fullName string) bool

	// FindByFirstName returns all names whose part before the first space equals firstName.
	// The comparison is case-sensitive. Names without a space are skipped.
	FindByFirstName(firstName string) []string

	// FindByLastName returns all names whose part after the first space equals lastName.
	// The comparison is case-sensitive. Names without a space are skipped.
	FindByLastName(lastName string) []string

	// Update replaces every name matching original case-insensitively with updatedName.
	// Case variants stored via SetNames all become updatedName, so SetNames(["John Doe", "JOHN DOE"])
	// followed by Update("john doe", "Jane Roe") stores ["Jane Roe", "Jane Roe"].
	// It returns false if original is not stored or if updatedName is already stored as another name.
	Update(original, updatedName string) bool

	// Remove deletes every name matching fullName case-insensitively.
	// It returns false iff no name matched.
	Remove(fullName string) bool
}
