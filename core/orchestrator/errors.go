package orchestrator

import (
	"errors"
	"fmt"
	"time"
)

// ErrProbeFailed is recorded on a feature when its liveness probe reports
// the instance unhealthy.
var ErrProbeFailed = errors.New("liveness probe failed")

// CycleError is raised during dependency resolution when the graph of a tier
// contains a back-edge. It is fatal for that tier.
type CycleError struct {
	Tier      Tier
	FeatureID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected in tier %q at feature %q", e.Tier, e.FeatureID)
}

// DependencyError is raised when a feature is about to start and one of its
// declared dependencies is unknown or did not reach ready.
type DependencyError struct {
	FeatureID    string
	DependencyID string
	Reason       string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("feature %q dependency %q not satisfied: %s", e.FeatureID, e.DependencyID, e.Reason)
}

// TimeoutError is raised when a feature constructor exceeds the configured
// per-feature budget. The constructor keeps running; its late result is
// discarded.
type TimeoutError struct {
	FeatureID string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("feature %q timed out after %s", e.FeatureID, e.Timeout)
}

// LazyLoadError wraps a failure while fetching one of a feature's heavy
// dependencies. It always demotes that feature only.
type LazyLoadError struct {
	FeatureID  string
	Dependency string
	Err        error
}

func (e *LazyLoadError) Error() string {
	return fmt.Sprintf("feature %q failed to load heavy dependency %q: %v", e.FeatureID, e.Dependency, e.Err)
}

func (e *LazyLoadError) Unwrap() error { return e.Err }

// FeatureDisabledError is returned when a caller requests a disabled feature.
type FeatureDisabledError struct {
	FeatureID string
}

func (e *FeatureDisabledError) Error() string {
	return fmt.Sprintf("feature %q is disabled", e.FeatureID)
}

// UnknownFeatureError is returned when a caller requests an unregistered ID.
type UnknownFeatureError struct {
	FeatureID string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("feature %q is not registered", e.FeatureID)
}

// NotReadyError is returned when a caller requests a feature that is
// registered and enabled but has not reached ready.
type NotReadyError struct {
	FeatureID string
	Status    Status
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("feature %q is not ready (status %s)", e.FeatureID, e.Status)
}

// RegistrationError is returned when a descriptor is rejected at
// registration time.
type RegistrationError struct {
	FeatureID string
	Reason    string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register feature %q: %s", e.FeatureID, e.Reason)
}
