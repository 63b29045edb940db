// Package sorter orders check results for display and reporting.
//
// Key components:
//   - ByStatus: sort.Interface ordering by status precedence, then reference.
//   - SortByStatus: Sorts results in place.
//
// Usage example:
//
//	sorter.SortByStatus(results)
package sorter
