//go:build system

package system_test

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.temporal.io/sdk/client"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
	appTemporal "github.com/BrunoXDR/project-manager-v2/internal/temporal"
)

var _ = Describe("System blackbox phase advancement", Ordered, func() {
	var repoRoot string
	var cfg systemTestConfig
	var db *sql.DB
	var manager domain.User
	var api *apiClient
	var adminAPI *apiClient

	BeforeAll(func() {
		if os.Getenv("RUN_BLACKBOX_SYSTEM_TEST") != "1" {
			Skip("set RUN_BLACKBOX_SYSTEM_TEST=1 to run real blackbox system test")
		}

		cfg = loadSystemTestConfig()

		var err error
		repoRoot, err = findRepoRoot()
		Expect(err).ToNot(HaveOccurred())

		By("verifying required docker compose services (including worker) are already running")
		Expect(requireComposeServicesRunning(repoRoot, cfg.RequiredComposeServices)).To(Succeed())

		By("failing fast if infrastructure is unreachable")
		Expect(waitForPostgres(cfg.PostgresDSN, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForTemporal(cfg.TemporalAddress, cfg.TemporalNamespace, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForHTTPStatus(cfg.MinioReadyURL, 200, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForHTTPStatus(strings.TrimRight(cfg.APIBaseURL, "/")+cfg.APIHealthPath, 200, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForHTTPStatus(strings.TrimRight(cfg.APIBaseURL, "/")+cfg.APIReadyPath, 200, cfg.PreflightTimeout)).To(Succeed())
		Expect(waitForWorkerPoller(cfg.TemporalAddress, cfg.TemporalNamespace, cfg.TemporalTaskQueue, cfg.WorkerPollerTimeout)).To(Succeed())
		Expect(applyMigration(repoRoot, cfg.PostgresDSN)).To(Succeed())

		db, err = sql.Open("postgres", cfg.PostgresDSN)
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(db.Close)

		By("provisioning a manager and logging in over HTTP")
		var password string
		manager, password, err = provisionUser(db, domain.RoleManager)
		Expect(err).ToNot(HaveOccurred())
		api = newAPIClient(cfg.APIBaseURL)
		Expect(api.login(manager.Email, password)).To(Succeed())

		admin, adminPassword, err := provisionUser(db, domain.RoleAdmin)
		Expect(err).ToNot(HaveOccurred())
		adminAPI = newAPIClient(cfg.APIBaseURL)
		Expect(adminAPI.login(admin.Email, adminPassword)).To(Succeed())
	})

	It("walks a project through the BRD gate and notifies its manager via a real worker", func() {
		By("registering a task template for the built phase")
		suffix := time.Now().Format("150405.000000")
		template := domain.TaskTemplate{
			Name:           "Build kickoff " + suffix,
			AppliesToPhase: domain.PhaseBuilt,
			Items: []domain.TaskTemplateItem{
				{Title: "Set up CI " + suffix, Priority: domain.PriorityHigh},
				{Title: "Write LLD " + suffix},
			},
		}
		status, err := adminAPI.do(http.MethodPost, "/api/admin/task-templates", template, &template)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusCreated))

		By("creating a project managed by the provisioned user")
		var project domain.Project
		status, err = api.do(http.MethodPost, "/api/projects", domain.ProjectInput{
			Name:             "System " + time.Now().Format("150405.000"),
			Client:           "Blackbox",
			StartDate:        "2025-01-01",
			EstimatedEndDate: "2025-12-31",
			ProjectManagerID: &manager.ID,
		}, &project)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusCreated))
		Expect(project.Phase).To(Equal(domain.PhaseInception))

		By("leaving inception, which has no gate")
		status, err = api.do(http.MethodPost, "/api/projects/"+project.ID+"/advance-phase", nil, &project)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(project.Phase).To(Equal(domain.PhaseDefinition))

		By("being refused at the definition gate without an approved BRD")
		var failure gateFailure
		status, err = api.do(http.MethodPost, "/api/projects/"+project.ID+"/advance-phase", nil, &failure)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(failure.Detail.Message).To(Equal("quality gate for phase 'definition' failed"))
		Expect(failure.Detail.Missing).To(Equal([]string{"required document: type 'BRD' with status 'approved'"}))

		By("uploading and approving the BRD")
		doc, err := api.upload(project.ID, "BRD", filepath.Join(repoRoot, cfg.UploadFixturePath))
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Status).To(Equal(domain.DocumentUploaded))

		approved := domain.DocumentApproved
		status, err = api.do(http.MethodPut, "/api/projects/"+project.ID+"/documents/"+doc.ID, domain.DocumentPatch{Status: &approved}, &doc)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(doc.Status).To(Equal(domain.DocumentApproved))

		By("passing the gate into built")
		status, err = api.do(http.MethodPost, "/api/projects/"+project.ID+"/advance-phase", nil, &project)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		Expect(project.Phase).To(Equal(domain.PhaseBuilt))

		By("finding the template tasks on the project")
		var tasks []domain.Task
		status, err = api.do(http.MethodGet, "/api/projects/"+project.ID+"/tasks", nil, &tasks)
		Expect(err).ToNot(HaveOccurred())
		Expect(status).To(Equal(http.StatusOK))
		titles := make([]string, 0, len(tasks))
		for _, task := range tasks {
			Expect(task.Status).To(Equal(domain.TaskTodo))
			titles = append(titles, task.Title)
		}
		Expect(titles).To(ContainElements(template.Items[0].Title, template.Items[1].Title))

		By("waiting for the phase notification workflow")
		temporalClient, err := client.Dial(client.Options{
			HostPort:  cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
		})
		Expect(err).ToNot(HaveOccurred())
		defer temporalClient.Close()

		workflowID := appTemporal.PhaseAdvancedWorkflowID(project.ID, domain.PhaseBuilt)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.WorkflowCompletionTimeout)
		defer cancel()

		var result appTemporal.PhaseAdvancedResult
		Expect(waitForWorkflowResult(ctx, temporalClient, workflowID, &result)).To(Succeed())
		Expect(result.ProjectID).To(Equal(project.ID))
		Expect(result.Notified).To(Equal(1))

		trace, err := collectActivityTrace(ctx, temporalClient, workflowID)
		Expect(err).ToNot(HaveOccurred())
		Expect(trace.ScheduledOrder).To(Equal(cfg.ExpectedActivityOrder))
		Expect(trace.CompletedOrder).To(Equal(cfg.ExpectedActivityOrder))

		loadOut := trace.Outputs["LoadStakeholdersActivity"].(appTemporal.LoadStakeholdersOutput)
		Expect(loadOut.Recipients).To(Equal([]string{manager.ID}))

		notifyIn := trace.Inputs["NotifyStakeholdersActivity"].(appTemporal.NotifyStakeholdersInput)
		Expect(notifyIn.Message).To(Equal(domain.PhaseAdvancedMessage(project.Name, domain.PhaseDefinition, domain.PhaseBuilt)))

		By("seeing the notification over HTTP")
		var inbox []domain.Notification
		Eventually(func() []string {
			_, err := api.do(http.MethodGet, "/api/notifications/me", nil, &inbox)
			Expect(err).ToNot(HaveOccurred())
			messages := make([]string, 0, len(inbox))
			for _, n := range inbox {
				messages = append(messages, n.Message)
			}
			return messages
		}, cfg.WorkflowCompletionTimeout, cfg.WorkflowPollInterval).Should(ContainElement(notifyIn.Message))

		By("verifying the audit trail in Postgres")
		actions, err := fetchStringRows(db,
			`SELECT action FROM audit_logs WHERE details->>'project_id' = $1 ORDER BY id`, project.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(actions).To(ContainElement(string(domain.AuditProjectCreated)))
		Expect(actions).To(ContainElement(string(domain.AuditPhaseAdvanced)))
		Expect(actions).To(ContainElement(string(domain.AuditPhaseNotificationSent)))

		By("checking the review decision reached the document workflow")
		documentWorkflowID := appTemporal.DocumentWorkflowID(getenv("SYSTEM_TEST_WORKFLOW_ID_PREFIX", "project"), doc.ID)
		Eventually(func() ([]string, error) {
			return collectWorkflowSignalNames(ctx, temporalClient, documentWorkflowID)
		}, cfg.WorkflowCompletionTimeout, cfg.WorkflowPollInterval).Should(ContainElement(appTemporal.DocumentReviewSignalName))
	})
})
