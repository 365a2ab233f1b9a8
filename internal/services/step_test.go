package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/propscan/audit-backend/internal/types"
)

func TestResolveOrUpdateSameIdentityReturnsOneRow(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	first, created, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "North Side", StepPatch{})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if !created {
		t.Fatalf("expected first resolve to create the step")
	}

	second, created, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "North Side", StepPatch{})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if created {
		t.Fatalf("expected second resolve to reuse the existing step")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same step id, got %s and %s", first.ID, second.ID)
	}
	if n := countRows(t, env.db, &types.AuditStep{}); n != 1 {
		t.Fatalf("expected 1 step row, got %d", n)
	}
}

func TestResolveOrUpdateTrimsIdentityFields(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	first, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "North Side", StepPatch{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, created, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "  exterior ", " North Side  ", StepPatch{})
	if err != nil {
		t.Fatalf("resolve with padding: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("padded identity should resolve to the same step")
	}
}

func TestResolveOrUpdatePreservesUnpatchedFields(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	if _, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "Roof", StepPatch{
		IsCompleted: boolPtr(true),
		Notes:       strPtr("two cracked shingles"),
	}); err != nil {
		t.Fatalf("initial resolve: %v", err)
	}

	step, created, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "Roof", StepPatch{
		NotAccessible: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if created {
		t.Fatalf("partial update must not create a new step")
	}
	if !step.IsCompleted {
		t.Fatalf("is_completed was not in the patch and must survive")
	}
	if step.Notes != "two cracked shingles" {
		t.Fatalf("notes were not in the patch and must survive, got %q", step.Notes)
	}
	if !step.NotAccessible {
		t.Fatalf("not_accessible was patched and must be true")
	}

	reread, err := env.stepRepo.GetByID(ctx, nil, step.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if !reread.IsCompleted || reread.Notes != "two cracked shingles" || !reread.NotAccessible {
		t.Fatalf("persisted step diverges from returned step: %+v", reread)
	}
}

func TestResolveOrUpdateExplicitFalseOverwrites(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	if _, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "interior", "Basement", StepPatch{
		IsCompleted: boolPtr(true),
	}); err != nil {
		t.Fatalf("initial resolve: %v", err)
	}

	step, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "interior", "Basement", StepPatch{
		IsCompleted: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("explicit false update: %v", err)
	}
	if step.IsCompleted {
		t.Fatalf("explicit false must overwrite a prior true")
	}
	reread, err := env.stepRepo.GetByID(ctx, nil, step.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.IsCompleted {
		t.Fatalf("explicit false was not persisted")
	}
}

func TestResolveOrUpdateRejectsMissingIdentity(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	cases := []struct {
		name     string
		stepType string
		label    string
	}{
		{"missing step_type", "", "North Side"},
		{"missing label", "exterior", ""},
		{"whitespace label", "exterior", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, tc.stepType, tc.label, StepPatch{})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if n := countRows(t, env.db, &types.AuditStep{}); n != 0 {
		t.Fatalf("rejected resolves must not create rows, got %d", n)
	}
}

func TestStepsWithSameLabelDifferentTypeAreDistinct(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	exterior, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "Garage", StepPatch{})
	if err != nil {
		t.Fatalf("exterior resolve: %v", err)
	}
	interior, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "interior", "Garage", StepPatch{})
	if err != nil {
		t.Fatalf("interior resolve: %v", err)
	}
	if exterior.ID == interior.ID {
		t.Fatalf("step_type is part of the identity key; expected two distinct steps")
	}
}

func TestSetCompletedByID(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	audit := env.seedAudit(t, env.seedProperty(t).ID)

	step, _, err := env.steps.ResolveOrUpdate(ctx, nil, audit.ID, "exterior", "South Side", StepPatch{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	updated, err := env.steps.SetCompletedByID(ctx, step.ID, true)
	if err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if !updated.IsCompleted {
		t.Fatalf("expected is_completed true")
	}

	if _, err := env.steps.SetCompletedByID(ctx, uuid.New(), true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown step, got %v", err)
	}
}
