// Package preflight verifies the runtime environment before work starts:
// directory permissions, external binaries, and encoder capability for
// the enabled codecs.
package preflight
