package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	policyIDKey contextKey = "policy_id"
	assetIDKey  contextKey = "asset_id"
)

// WithRunID annotates context with the correlation identifier of one fetch run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPolicyID annotates context with the collection (policy) id being fetched.
func WithPolicyID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, policyIDKey, id)
}

// PolicyIDFromContext returns the policy id if present.
func PolicyIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(policyIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAssetID annotates context with the asset a task is working on.
func WithAssetID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, assetIDKey, id)
}

// AssetIDFromContext returns the asset id if present.
func AssetIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(assetIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
