// Package retry holds the backoff policy that governs delays between task
// attempts.
package retry

import (
	"errors"
	"time"

	"github.com/conveyorhq/conveyor/internal/domain/model"
)

// ErrInvalidBase indicates a configured base delay is not positive.
var ErrInvalidBase = errors.New("backoff base must be positive")

const (
	// DefaultBase is the backoff base delay for generic tasks.
	DefaultBase = 100 * time.Millisecond
	// NetworkBase is the backoff base delay for network-bound fetch tasks,
	// which tolerate transient upstream hiccups better with a longer wait.
	NetworkBase = 500 * time.Millisecond
)

// BaseSource identifies how a backoff base was resolved.
type BaseSource string

const (
	// BaseSourceOverride indicates a per-category override matched.
	BaseSourceOverride BaseSource = "override"
	// BaseSourceNetwork indicates the built-in network-bound base was used.
	BaseSourceNetwork BaseSource = "network"
	// BaseSourceDefault indicates the generic base was used.
	BaseSourceDefault BaseSource = "default"
)

// BackoffPolicy resolves the exponential-backoff base delay for a task
// category. The base is a property of the category, not a global constant:
// network-bound fetches wait longer between attempts than local work.
type BackoffPolicy struct {
	defaultBase time.Duration
	networkBase time.Duration
	overrides   map[model.TaskType]time.Duration
}

// BackoffPolicyOptions configures a BackoffPolicy. Zero values fall back to
// the built-in bases.
type BackoffPolicyOptions struct {
	DefaultBase time.Duration
	NetworkBase time.Duration
	// Overrides maps task categories to explicit base delays, taking
	// precedence over the built-in resolution.
	Overrides map[model.TaskType]time.Duration
}

// NewBackoffPolicy constructs a BackoffPolicy.
func NewBackoffPolicy(opts BackoffPolicyOptions) (*BackoffPolicy, error) {
	defaultBase := opts.DefaultBase
	if defaultBase == 0 {
		defaultBase = DefaultBase
	}
	networkBase := opts.NetworkBase
	if networkBase == 0 {
		networkBase = NetworkBase
	}
	if defaultBase < 0 || networkBase < 0 {
		return nil, ErrInvalidBase
	}
	for _, base := range opts.Overrides {
		if base <= 0 {
			return nil, ErrInvalidBase
		}
	}

	overrides := make(map[model.TaskType]time.Duration, len(opts.Overrides))
	for category, base := range opts.Overrides {
		overrides[category] = base
	}

	return &BackoffPolicy{
		defaultBase: defaultBase,
		networkBase: networkBase,
		overrides:   overrides,
	}, nil
}

// BaseDecision captures the outcome of resolving a backoff base.
type BaseDecision struct {
	Base     time.Duration
	Source   BaseSource
	Category model.TaskType
}

// Resolve returns the backoff base delay for the given task category.
func (p *BackoffPolicy) Resolve(category model.TaskType) BaseDecision {
	if p == nil {
		return BaseDecision{Base: DefaultBase, Source: BaseSourceDefault, Category: category}
	}
	if base, ok := p.overrides[category]; ok {
		return BaseDecision{Base: base, Source: BaseSourceOverride, Category: category}
	}
	if category == model.TaskTypeFetchAPIData {
		return BaseDecision{Base: p.networkBase, Source: BaseSourceNetwork, Category: category}
	}
	return BaseDecision{Base: p.defaultBase, Source: BaseSourceDefault, Category: category}
}
