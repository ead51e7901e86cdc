package listeners

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// createSubAssignment seeds two artisans, an in-progress batch owned by
// the first, and a pending sub-assignment to the second.
func createSubAssignment(h *harness, uid string) {
	h.t.Helper()
	h.createAccount(keyArtisan, "artisan", "artisan@example.com")
	h.createAccount(keyArtisan2, "artisan", "artisan2@example.com")
	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product_batch",
		"uid":        "batch-1",
		"quantity":   4,
	})
	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type":       "sub_assignment",
		"uid":              uid,
		"batch":            "batch-1",
		"assignee":         keyArtisan2,
		"task_description": "carve lid panels",
		"pay_usd":          "120",
	})
}

func TestSubAssignmentCreationLinks(t *testing.T) {
	h := newHarness(t)
	createSubAssignment(h, "sub-1")

	assignment := h.asset("sub-1", "sub_assignment").(*model.SubAssignment)
	require.Equal(t, model.SubAssignmentPending, assignment.Status)
	require.Equal(t, keyArtisan, assignment.Assigner)
	require.Equal(t, keyArtisan2, assignment.Assignee)
	require.Equal(t, "carve lid panels", assignment.TaskDescription)
	require.False(t, assignment.IsPaid)

	batch := h.asset("batch-1", "product_batch").(*model.ProductBatch)
	require.Contains(t, batch.SubAssignments, "sub-1")
	require.Empty(t, batch.SubAssignees, "roster fills on acceptance, not creation")

	assignee := h.account(keyArtisan2).(*model.ArtisanAccount)
	require.Contains(t, assignee.SubAssignments, "sub-1")
}

func TestSubAssignmentCannotSelfAssign(t *testing.T) {
	h := newHarness(t)
	h.createAccount(keyArtisan, "artisan", "artisan@example.com")
	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product_batch",
		"uid":        "batch-1",
	})

	err := h.apply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "sub_assignment",
		"uid":        "sub-1",
		"batch":      "batch-1",
		"assignee":   keyArtisan,
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "self-assigned")
	require.False(t, h.hasAsset("sub-1", "sub_assignment"))
}

func TestSubAssignmentRequiresBatchOwnership(t *testing.T) {
	h := newHarness(t)
	h.createAccount(keyArtisan, "artisan", "artisan@example.com")
	h.createAccount(keyArtisan2, "artisan", "artisan2@example.com")
	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product_batch",
		"uid":        "batch-1",
	})

	err := h.apply(keyArtisan2, "create/asset", map[string]any{
		"asset_type": "sub_assignment",
		"uid":        "sub-1",
		"batch":      "batch-1",
		"assignee":   keyArtisan,
	})
	var permission *engine.PermissionError
	require.ErrorAs(t, err, &permission)
	require.ErrorContains(t, err, "batch owner")
}

func TestSubAssignmentAcceptance(t *testing.T) {
	h := newHarness(t)
	createSubAssignment(h, "sub-1")

	// Only the assignee may accept.
	err := h.apply(keyArtisan, "accept/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	var permission *engine.PermissionError
	require.ErrorAs(t, err, &permission)

	h.mustApply(keyArtisan2, "accept/sub_assignment", map[string]any{"sub_assignment": "sub-1"})

	assignment := h.asset("sub-1", "sub_assignment").(*model.SubAssignment)
	require.Equal(t, model.SubAssignmentAccepted, assignment.Status)

	batch := h.asset("batch-1", "product_batch").(*model.ProductBatch)
	require.Equal(t, []string{keyArtisan2}, batch.SubAssignees)

	assignee := h.account(keyArtisan2).(*model.ArtisanAccount)
	require.Contains(t, assignee.SubAssignmentsAccepted, "sub-1")

	// Accepting again fails: the assignment already left pending.
	err = h.apply(keyArtisan2, "accept/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "only pending")
}

func TestSubAssignmentRejectionRequiresReason(t *testing.T) {
	h := newHarness(t)
	createSubAssignment(h, "sub-1")

	err := h.apply(keyArtisan2, "reject/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "rejection_reason")

	h.mustApply(keyArtisan2, "reject/sub_assignment", map[string]any{
		"sub_assignment":   "sub-1",
		"rejection_reason": "workshop at capacity",
	})

	assignment := h.asset("sub-1", "sub_assignment").(*model.SubAssignment)
	require.Equal(t, model.SubAssignmentRejected, assignment.Status)
	require.Equal(t, "workshop at capacity", assignment.RejectionReason)

	assignee := h.account(keyArtisan2).(*model.ArtisanAccount)
	require.Contains(t, assignee.SubAssignmentsRejected, "sub-1")
}

func TestSubAssignmentCompletion(t *testing.T) {
	h := newHarness(t)
	createSubAssignment(h, "sub-1")

	// Completing a pending assignment fails.
	err := h.apply(keyArtisan2, "complete/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "only accepted")

	h.mustApply(keyArtisan2, "accept/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	h.mustApply(keyArtisan2, "complete/sub_assignment", map[string]any{"sub_assignment": "sub-1"})

	assignment := h.asset("sub-1", "sub_assignment").(*model.SubAssignment)
	require.Equal(t, model.SubAssignmentCompleted, assignment.Status)
}

func TestSubAssignmentPayment(t *testing.T) {
	h := newHarness(t)
	createSubAssignment(h, "sub-1")
	h.mustApply(keyArtisan2, "accept/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	h.mustApply(keyArtisan2, "complete/sub_assignment", map[string]any{"sub_assignment": "sub-1"})

	// Only the assigner may pay.
	err := h.apply(keyArtisan2, "paid/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	var permission *engine.PermissionError
	require.ErrorAs(t, err, &permission)

	h.mustApply(keyArtisan, "paid/sub_assignment", map[string]any{"sub_assignment": "sub-1"})

	assignment := h.asset("sub-1", "sub_assignment").(*model.SubAssignment)
	require.True(t, assignment.IsPaid)

	err = h.apply(keyArtisan, "paid/sub_assignment", map[string]any{"sub_assignment": "sub-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "already paid")
}
