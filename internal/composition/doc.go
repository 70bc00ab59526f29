// Package composition lowers an editable project graph into the flat
// segment plan an encode backend consumes. The builder resolves clip
// sources through an asset loader, concatenates clips per track with a
// running cursor, and records everything it declines to lower.
package composition
