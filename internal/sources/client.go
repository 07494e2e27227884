package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// Client implements Catalog over a Fetcher
type Client struct {
	fetcher Fetcher
}

var _ Catalog = (*Client)(nil)

// NewClient creates a catalog client
func NewClient(fetcher Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// FetchModule fetches GET /modules/{id} from the academy service
func (c *Client) FetchModule(ctx context.Context, id int) Result {
	return c.fetcher.FetchEntity(ctx, catalog.ServiceAcademy, "/modules/"+strconv.Itoa(id))
}

// FetchExams fetches GET /exams from the academy service
func (c *Client) FetchExams(ctx context.Context) Result {
	return c.fetcher.FetchEntity(ctx, catalog.ServiceAcademy, "/exams")
}

// FetchExamModules fetches GET /exams/{id}/modules from the academy service
func (c *Client) FetchExamModules(ctx context.Context, examID int) Result {
	return c.fetcher.FetchEntity(ctx, catalog.ServiceAcademy, fmt.Sprintf("/exams/%d/modules", examID))
}

// FetchMachine fetches GET /machine/profile/{id|name} from the labs service
func (c *Client) FetchMachine(ctx context.Context, ref catalog.MachineRef) Result {
	key := url.PathEscape(ref.Name)
	if ref.ID > 0 {
		key = strconv.Itoa(ref.ID)
	}
	return c.fetcher.FetchEntity(ctx, catalog.ServiceLabs, "/machine/profile/"+key)
}

// FetchMachineTags fetches GET /machine/tags/{id} from the labs service
func (c *Client) FetchMachineTags(ctx context.Context, machineID int) Result {
	return c.fetcher.FetchEntity(ctx, catalog.ServiceLabs, "/machine/tags/"+strconv.Itoa(machineID))
}
