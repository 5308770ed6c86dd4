// Package namestore provides an in-memory repository of full names.
//
// Full names are plain strings of the form "<firstName> <lastName>". The store keeps them in
// insertion order and answers lookups by full name (case-insensitive), first name and last name
// (both case-sensitive). Every read returns a copy, so callers may modify returned slices freely.
//
// Add is the only operation that rejects duplicates. SetNames stores its input verbatim, so a
// store filled with SetNames may hold names that differ only in case. Update and Remove act on
// all of them.
//
//	store := namestore.NewNameStore()
//	store.Add("John Doe")                  // true
//	store.Add("john doe")                  // false
//	store.FindByLastName("Doe")            // ["John Doe"]
//	store.Update("John Doe", "John Smith") // true
//
// NewMonitoredNameStore additionally writes every change as an InfluxDB data point, see
// monitoring.WriteInfluxPoint.
package namestore
