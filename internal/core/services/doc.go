// Package services contains the application core: ingestion, query
// answering and index administration. Services depend only on the
// ports; adapters are wired in at startup.
package services
