// Package sources provides the transport to the remote catalog services.
//
// Every request goes through a Transport, which paces it with the rate
// governor, attaches the service credential and classifies the response
// into a closed set of outcomes:
//   - OutcomeOK: 200 with a JSON body
//   - OutcomeNotFound: the id does not exist (404, 410), an expected terminal state
//   - OutcomeForbidden: the credential was rejected (401, 403)
//   - OutcomeTransient: network failures, 429, 5xx and other statuses
//   - OutcomeMalformed: 200 with a body that is not JSON
//
// Client layers the typed academy and labs endpoints on top of a Transport
// and implements the Catalog interface consumed by the sync orchestrator.
package sources
