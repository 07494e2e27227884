package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/gomega"

	"github.com/labcatalog/catalog-sync/internal/api"
	"github.com/labcatalog/catalog-sync/internal/app"
	appstorage "github.com/labcatalog/catalog-sync/internal/app/storage"
	"github.com/labcatalog/catalog-sync/internal/config"
	"github.com/labcatalog/catalog-sync/internal/storage/memory"
)

// ServerTestHelper manages a catalog-sync application backed by in-memory storage
type ServerTestHelper struct {
	ctx        context.Context
	baseURL    string
	httpClient *http.Client
	app        *app.SyncApp
	gateway    *memory.Gateway
	errCh      chan error
}

// NewConfig returns a configuration pointing both services at upstream.
// Secrets and run snapshots are written below dir.
func NewConfig(upstream *Upstream, dir string) *config.Config {
	session := filepath.Join(dir, "session")
	token := filepath.Join(dir, "token")
	gomega.Expect(os.WriteFile(session, []byte("session=integration"), 0600)).To(gomega.Succeed())
	gomega.Expect(os.WriteFile(token, []byte("integration-token"), 0600)).To(gomega.Succeed())

	return &config.Config{
		Academy: config.ServiceConfig{
			BaseURL:        upstream.AcademyURL(),
			CredentialFile: session,
			RequestDelay:   "1ms",
		},
		Labs: config.ServiceConfig{
			BaseURL:        upstream.LabsURL(),
			CredentialFile: token,
			RequestDelay:   "1ms",
		},
		Sync: config.SyncConfig{
			ModuleCeiling:  6,
			Interval:       "24h",
			RequestTimeout: "5s",
		},
		Storage: config.StorageConfig{StatusDir: filepath.Join(dir, "status")},
	}
}

// NewServerTestHelper builds the application on a free local port
func NewServerTestHelper(ctx context.Context, cfg *config.Config) *ServerTestHelper {
	factory, err := appstorage.NewMemoryFactory(cfg)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gw, err := factory.CreateGateway(ctx)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	address := freeAddress()
	syncApp, err := app.NewSyncApp(ctx,
		app.WithConfig(cfg),
		app.WithAddress(address),
		app.WithStorageFactory(factory),
	)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return &ServerTestHelper{
		ctx:        ctx,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		app:        syncApp,
		gateway:    gw.(*memory.Gateway),
		errCh:      make(chan error, 1),
	}
}

func freeAddress() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	addr := l.Addr().String()
	gomega.Expect(l.Close()).To(gomega.Succeed())
	return addr
}

// App returns the application under test
func (s *ServerTestHelper) App() *app.SyncApp {
	return s.app
}

// Gateway returns the in-memory catalog the application writes to
func (s *ServerTestHelper) Gateway() *memory.Gateway {
	return s.gateway
}

// StartServer starts the coordinator and the status API in the background
func (s *ServerTestHelper) StartServer() {
	go func() {
		s.errCh <- s.app.Start(s.ctx)
	}()
}

// StopServer stops the application and returns the error Start finished with
func (s *ServerTestHelper) StopServer() error {
	if err := s.app.Stop(5 * time.Second); err != nil {
		return err
	}
	select {
	case err := <-s.errCh:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("server did not stop in time")
	}
}

// WaitForServerReady waits until /health answers
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() int {
		resp, err := s.httpClient.Get(s.baseURL + "/health")
		if err != nil {
			return 0
		}
		_ = resp.Body.Close()
		return resp.StatusCode
	}, timeout, 50*time.Millisecond).Should(gomega.Equal(http.StatusOK))
}

// Get performs a GET against the status API
func (s *ServerTestHelper) Get(path string) *http.Response {
	resp, err := s.httpClient.Get(s.baseURL + path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return resp
}

// Post performs an empty POST against the status API
func (s *ServerTestHelper) Post(path string) *http.Response {
	resp, err := s.httpClient.Post(s.baseURL+path, "application/json", nil)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return resp
}

// LatestRun fetches /v1/runs/latest, returning nil while no run exists
func (s *ServerTestHelper) LatestRun() *api.LatestRunResponse {
	resp := s.Get("/v1/runs/latest")
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var latest api.LatestRunResponse
	gomega.Expect(json.NewDecoder(resp.Body).Decode(&latest)).To(gomega.Succeed())
	return &latest
}

// Runs fetches /v1/runs with the given limit
func (s *ServerTestHelper) Runs(limit int) api.RunsResponse {
	resp := s.Get(fmt.Sprintf("/v1/runs?limit=%d", limit))
	defer func() { _ = resp.Body.Close() }()
	gomega.Expect(resp.StatusCode).To(gomega.Equal(http.StatusOK))
	var runs api.RunsResponse
	gomega.Expect(json.NewDecoder(resp.Body).Decode(&runs)).To(gomega.Succeed())
	return runs
}
