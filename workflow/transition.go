package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/harborworks/salvage_backend/models"
	"bitbucket.org/harborworks/salvage_backend/utils"
)

var ErrPermissionDenied = errors.New("permission denied")

// TransitionError reports a failed state transition. CompletedSteps lists the
// side-effect steps that had already run when FailedStep broke. Committed
// tells the caller whether those steps survived: most transitions roll the
// whole transaction back (Committed false), but Mark Paid deliberately commits
// the status and stock changes even when the journal post fails.
type TransitionError struct {
	Op             string
	FailedStep     string
	CompletedSteps []string
	Committed      bool
	Err            error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: step %s failed: %v", e.Op, e.FailedStep, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Partial reports whether some side effects of the transition were committed
// despite the failure. Callers surface this to the user as "completed with
// warnings" rather than a plain error.
func (e *TransitionError) Partial() bool {
	return e.Committed && len(e.CompletedSteps) > 0
}

// checkPermission consults the role allow-list when the context carries a
// role id. Contexts without a role (internal jobs, tests) pass through.
func checkPermission(ctx context.Context, moduleName string, action string) error {
	roleId, ok := utils.GetRoleIdFromContext(ctx)
	if !ok || roleId <= 0 {
		return nil
	}
	allowed, err := models.HasPermission(ctx, roleId, moduleName, action)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}
