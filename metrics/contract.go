package metrics

const (
	// 常见的标签
	LabelService   = "service"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)

const (
	// 常见的结果
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
