package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType names the event a log line records (snake_case).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID is the correlation identifier of one fetch run.
	FieldRunID = "run_id"
	// FieldPolicyID is the collection (policy) id being fetched.
	FieldPolicyID = "policy_id"
	// FieldAssetID is the on-chain asset identifier.
	FieldAssetID = "asset_id"
)
