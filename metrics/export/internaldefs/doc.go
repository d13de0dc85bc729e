// Package internaldefs holds the shared metric name and bucket definitions
// used by the exporters under metrics/export. It exists so exporters agree
// on names without importing each other.
package internaldefs
