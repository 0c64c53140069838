package temporal

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/testsuite"

	"github.com/BrunoXDR/project-manager-v2/internal/domain"
)

type activityTrace struct {
	mu sync.Mutex

	startedOrder   []string
	completedOrder []string

	loadIn    *LoadStakeholdersInput
	loadOut   *LoadStakeholdersOutput
	notifyIn  *NotifyStakeholdersInput
	notifyOut *NotifyStakeholdersOutput
	auditIn   *RecordAuditInput
}

func (t *activityTrace) recordStarted(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedOrder = append(t.startedOrder, name)
}

func (t *activityTrace) recordCompleted(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completedOrder = append(t.completedOrder, name)
}

var _ = Describe("PhaseAdvancedWorkflow blackbox happy path", func() {
	It("loads stakeholders, notifies each once and records the audit entry", func() {
		var suite testsuite.WorkflowTestSuite
		env := suite.NewTestWorkflowEnvironment()

		store := newFakeStore()
		store.projects["p-42"] = domain.Project{
			ID:               "p-42",
			Name:             "Gemini",
			Phase:            domain.PhaseDeploy,
			ProjectManagerID: strPtr("lead"),
			TechnicalLeadID:  strPtr("lead"),
		}
		acts := &Activities{Store: store}
		trace := &activityTrace{}

		env.SetOnActivityStartedListener(func(info *activity.Info, _ context.Context, args converter.EncodedValues) {
			trace.recordStarted(info.ActivityType.Name)

			switch info.ActivityType.Name {
			case "LoadStakeholdersActivity":
				var in LoadStakeholdersInput
				_ = args.Get(&in)
				trace.mu.Lock()
				trace.loadIn = &in
				trace.mu.Unlock()
			case "NotifyStakeholdersActivity":
				var in NotifyStakeholdersInput
				_ = args.Get(&in)
				trace.mu.Lock()
				trace.notifyIn = &in
				trace.mu.Unlock()
			case "RecordAuditActivity":
				var in RecordAuditInput
				_ = args.Get(&in)
				trace.mu.Lock()
				trace.auditIn = &in
				trace.mu.Unlock()
			}
		})

		env.SetOnActivityCompletedListener(func(info *activity.Info, result converter.EncodedValue, _ error) {
			trace.recordCompleted(info.ActivityType.Name)

			switch info.ActivityType.Name {
			case "LoadStakeholdersActivity":
				var out LoadStakeholdersOutput
				_ = result.Get(&out)
				trace.mu.Lock()
				trace.loadOut = &out
				trace.mu.Unlock()
			case "NotifyStakeholdersActivity":
				var out NotifyStakeholdersOutput
				_ = result.Get(&out)
				trace.mu.Lock()
				trace.notifyOut = &out
				trace.mu.Unlock()
			}
		})

		env.RegisterWorkflow(PhaseAdvancedWorkflow)
		env.RegisterActivity(acts.LoadStakeholdersActivity)
		env.RegisterActivity(acts.NotifyStakeholdersActivity)
		env.RegisterActivity(acts.RecordAuditActivity)

		By("triggering the workflow the way the API does after committing the phase change")
		env.ExecuteWorkflow(PhaseAdvancedWorkflow, PhaseAdvancedInput{
			ProjectID:   "p-42",
			ProjectName: "Gemini",
			FromPhase:   domain.PhaseDeploy,
			ToPhase:     domain.PhaseClose,
			ActorID:     "admin-1",
		})

		By("validating workflow completes successfully")
		Expect(env.IsWorkflowCompleted()).To(BeTrue())
		Expect(env.GetWorkflowError()).ToNot(HaveOccurred())

		var wfResult PhaseAdvancedResult
		Expect(env.GetWorkflowResult(&wfResult)).To(Succeed())
		Expect(wfResult).To(Equal(PhaseAdvancedResult{ProjectID: "p-42", Notified: 1}))

		By("validating activity order and payloads")
		expectedOrder := []string{
			"LoadStakeholdersActivity",
			"NotifyStakeholdersActivity",
			"RecordAuditActivity",
		}
		Expect(trace.startedOrder).To(Equal(expectedOrder))
		Expect(trace.completedOrder).To(Equal(expectedOrder))

		Expect(trace.loadIn).ToNot(BeNil())
		Expect(trace.loadIn.ProjectID).To(Equal("p-42"))
		Expect(trace.loadOut).ToNot(BeNil())
		Expect(trace.loadOut.Recipients).To(Equal([]string{"lead"}))

		Expect(trace.notifyIn).ToNot(BeNil())
		Expect(trace.notifyIn.Message).To(Equal("Project 'Gemini' advanced from deploy to close"))
		Expect(trace.notifyIn.Link).ToNot(BeNil())
		Expect(*trace.notifyIn.Link).To(Equal("/projects/p-42"))
		Expect(trace.notifyOut.Sent).To(Equal(1))

		Expect(trace.auditIn).ToNot(BeNil())
		Expect(trace.auditIn.Action).To(Equal(domain.AuditPhaseNotificationSent))
		Expect(*trace.auditIn.ActorID).To(Equal("admin-1"))
		Expect(trace.auditIn.Details).To(HaveKeyWithValue("to", "close"))
		Expect(trace.auditIn.Details).To(HaveKeyWithValue("recipients", "1"))

		Expect(store.sent()).To(HaveLen(1))
	})
})
