package sources

import (
	"context"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Outcome classifies the result of a governed fetch
type Outcome string

const (
	// OutcomeOK is a successful fetch with a JSON payload
	OutcomeOK Outcome = "ok"
	// OutcomeNotFound means the remote entity does not exist
	OutcomeNotFound Outcome = "not_found"
	// OutcomeForbidden means the credential was rejected
	OutcomeForbidden Outcome = "forbidden"
	// OutcomeTransient is a network or server-side failure
	OutcomeTransient Outcome = "transient"
	// OutcomeMalformed is a successful response whose body is not valid JSON
	OutcomeMalformed Outcome = "malformed"
)

// Result is the outcome of one governed fetch
type Result struct {
	Outcome Outcome
	// Payload is the raw response body, set for OutcomeOK and OutcomeMalformed
	Payload []byte
	// StatusCode is the HTTP status, 0 when no response was received
	StatusCode int
	// Err holds the underlying cause for every outcome but OutcomeOK
	Err error
}

// OK reports whether the fetch succeeded
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Credentials are the pre-obtained secrets attached to remote requests.
// They are never validated or refreshed by this package.
type Credentials struct {
	// AcademySession is sent verbatim as the Cookie header of academy requests
	AcademySession string
	// LabsToken is sent as a bearer token on labs requests
	LabsToken string
}

// Throttler paces requests per service
type Throttler interface {
	Throttle(ctx context.Context, svc catalog.Service) error
}

//go:generate mockgen -destination=mocks/mock_catalog.go -package=mocks -source=types.go Fetcher,Catalog

// Fetcher performs governed fetches against a remote service
type Fetcher interface {
	// FetchEntity paces, sends and classifies one GET of path on the given service
	FetchEntity(ctx context.Context, svc catalog.Service, path string) Result
}

// Catalog exposes the typed endpoints of both remote services
type Catalog interface {
	// FetchModule fetches one academy module by id
	FetchModule(ctx context.Context, id int) Result
	// FetchExams fetches the academy exam list
	FetchExams(ctx context.Context) Result
	// FetchExamModules fetches the ids of the modules related to an exam
	FetchExamModules(ctx context.Context, examID int) Result
	// FetchMachine fetches a labs machine profile by id, or by name when the id is unknown
	FetchMachine(ctx context.Context, ref catalog.MachineRef) Result
	// FetchMachineTags fetches the tag list of a labs machine
	FetchMachineTags(ctx context.Context, machineID int) Result
}
