package integration

import (
	"net/http"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/labcatalog/catalog-sync/internal/catalog"
	"github.com/labcatalog/catalog-sync/internal/status"
	"github.com/labcatalog/catalog-sync/test-integration/catalog-sync/helpers"
)

var _ = Describe("Catalog sync", func() {
	var (
		upstream *helpers.Upstream
		tempDir  string
		server   *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "catalog-sync-integration-")
		Expect(err).NotTo(HaveOccurred())

		upstream = helpers.NewUpstream()
		server = helpers.NewServerTestHelper(ctx, helpers.NewConfig(upstream, tempDir))
	})

	AfterEach(func() {
		upstream.Close()
		if err := os.RemoveAll(tempDir); err != nil {
			By("Warning: failed to cleanup temp dir: " + err.Error())
		}
	})

	Context("one-shot sweep", func() {
		AfterEach(func() {
			server.App().Close()
		})

		It("stores the whole catalog reachable from the module range", func() {
			snap, err := server.App().RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Phase).To(Equal(status.PhaseComplete))
			Expect(snap.Cancelled).To(BeFalse())
			Expect(snap.FinishedAt).NotTo(BeNil())
			Expect(snap.Counters[catalog.EntityModule].Processed).To(Equal(1))

			gw := server.Gateway()
			module, found := gw.Module(5)
			Expect(found).To(BeTrue())
			Expect(module.Name).To(Equal("SQL Injection Fundamentals"))
			Expect(module.Difficulty).To(Equal(catalog.ModuleMedium))

			units := gw.Units(5)
			Expect(units).To(HaveLen(2))
			Expect(units[0].Name).To(Equal("Introduction"))
			Expect(units[0].Sequence).To(Equal(1))
			Expect(units[1].Type).To(Equal(catalog.UnitInteractive))

			machine, found := gw.Machine(42)
			Expect(found).To(BeTrue())
			Expect(machine.OS).To(Equal(catalog.OSLinux))

			Expect(gw.Links(catalog.LinkModuleMachine, 5)).To(ConsistOf(42))
			Expect(gw.Links(catalog.LinkExamModule, 1)).To(ConsistOf(5))
			Expect(gw.Links(catalog.LinkMachineVulnerability, 42)).To(ConsistOf(9))
		})

		It("writes nothing when the catalog did not change", func() {
			_, err := server.App().RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			changes := server.Gateway().Changes()

			_, err = server.App().RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Gateway().Changes()).To(Equal(changes))
		})

		It("fetches the machine profile once per sweep", func() {
			_, err := server.App().RunOnce(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(upstream.Requests("/labs/machine/profile/42")).To(Equal(1))
		})
	})

	Context("serving the status API", func() {
		BeforeEach(func() {
			server.StartServer()
			server.WaitForServerReady(10 * time.Second)
		})

		AfterEach(func() {
			Expect(server.StopServer()).To(Succeed())
		})

		It("reports the startup sweep", func() {
			Eventually(func(g Gomega) {
				latest := server.LatestRun()
				g.Expect(latest).NotTo(BeNil())
				g.Expect(latest.Running).To(BeFalse())
				g.Expect(latest.Run).NotTo(BeNil())
				g.Expect(latest.Run.Phase).To(Equal(status.PhaseComplete))
				g.Expect(latest.Totals.Processed).To(BeNumerically(">", 0))
			}, 10*time.Second, 100*time.Millisecond).Should(Succeed())

			Eventually(func() int {
				return server.Runs(5).Count
			}, 10*time.Second, 100*time.Millisecond).Should(Equal(1))
		})

		It("is ready", func() {
			resp := server.Get("/readiness")
			defer func() { _ = resp.Body.Close() }()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("picks up upstream changes on a manual trigger", func() {
			Eventually(func() int {
				return server.Runs(5).Count
			}, 10*time.Second, 100*time.Millisecond).Should(Equal(1))
			Eventually(func() bool {
				latest := server.LatestRun()
				return latest != nil && !latest.Running
			}, 10*time.Second, 100*time.Millisecond).Should(BeTrue())

			upstream.SetFixture("/academy/modules/5", `{"data": {"id": 5, "name": "SQL Injection Essentials",
				"difficulty": "Hard", "sections": [], "related_machines": []}}`)

			resp := server.Post("/v1/sync")
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

			Eventually(func() int {
				return server.Runs(5).Count
			}, 10*time.Second, 100*time.Millisecond).Should(Equal(2))

			module, found := server.Gateway().Module(5)
			Expect(found).To(BeTrue())
			Expect(module.Name).To(Equal("SQL Injection Essentials"))
			Expect(module.Difficulty).To(Equal(catalog.ModuleHard))
		})
	})
})
