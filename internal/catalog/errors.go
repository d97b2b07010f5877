package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports invalid caller input. Resolved entirely locally,
// no remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DependencyCreateError reports that a service or subcategory required by a
// save could not be created. The operation is aborted and no item is written.
type DependencyCreateError struct {
	Kind string // "service" or "subcategory"
	Name string
	Err  error
}

func (e *DependencyCreateError) Error() string {
	return fmt.Sprintf("create %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *DependencyCreateError) Unwrap() error { return e.Err }

// DuplicateItemError reports that the resolved (service, subcategory) pair is
// already taken by another item.
type DuplicateItemError struct {
	ServiceID       uuid.UUID
	SubcategoryID   uuid.UUID
	ServiceName     string
	SubcategoryName string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("an item for %q / %q already exists", e.ServiceName, e.SubcategoryName)
}

// RemoteError reports a failed create/update/delete call against the remote
// authority. Side effects already committed remotely are not rolled back
// beyond the recorded compensations.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// PartialDeleteError reports a category deletion that stopped partway: the
// named service failed to delete, the category and the remaining services are
// left intact for retry, and the services deleted before the failure stay
// deleted.
type PartialDeleteError struct {
	CategoryID      uuid.UUID
	FailedService   string
	DeletedServices []string
	Err             error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("category not deleted: deleting service %q failed: %v (%d services already deleted)",
		e.FailedService, e.Err, len(e.DeletedServices))
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

// CleanupWarning reports a failed best-effort cleanup (orphan removal or
// compensation). Never fatal: a dangling unused record is a recoverable
// inconsistency.
type CleanupWarning struct {
	Kind string
	ID   uuid.UUID
	Name string
	Err  error
}

func (w *CleanupWarning) Error() string {
	return fmt.Sprintf("could not remove unused %s %q: %v", w.Kind, w.Name, w.Err)
}

func (w *CleanupWarning) Unwrap() error { return w.Err }
