// Package connectors holds sources that discover files for ingestion.
// The filesystem connector walks and watches local folders.
package connectors
