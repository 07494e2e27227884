// Package integration drives the catalog-sync application end to end against
// fake academy and labs services and checks both the stored catalog and the
// status API.
package integration
