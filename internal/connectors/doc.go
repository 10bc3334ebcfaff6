// Package connectors provides sources that feed documents into docqa.
// The filesystem connector scans and watches a local inbox directory.
package connectors
