package domain

// AnswerState is a step of the retrieval and answer pipeline.
type AnswerState string

// Pipeline states in execution order. StateErrored is reachable from any step.
const (
	StateReceived         AnswerState = "received"
	StateEmbedding        AnswerState = "embedding"
	StateSearching        AnswerState = "searching"
	StateContextAssembled AnswerState = "context_assembled"
	StateGenerating       AnswerState = "generating"
	StateAnswered         AnswerState = "answered"
	StateErrored          AnswerState = "errored"
)

// String returns the string representation.
func (s AnswerState) String() string {
	return string(s)
}

// Answer is the result of one chat request.
type Answer struct {
	// RequestID correlates the answer with out-of-band error reports.
	RequestID string

	// Text is safe to show to the user.
	Text string

	// State is the final pipeline state (answered or errored).
	State AnswerState

	// FailedAt is the state that failed when State is errored.
	FailedAt AnswerState

	// Fallback is true if Text is the fallback message.
	Fallback bool

	// Matches are the retrieved chunks used as context.
	Matches []Match

	// Err is the underlying cause. It is never shown to the user.
	Err error
}

// Readiness describes the initialisation state of a provider.
type Readiness string

// Readiness states.
const (
	ReadinessNotStarted Readiness = "not_started"
	ReadinessLoading    Readiness = "loading"
	ReadinessReady      Readiness = "ready"
	ReadinessFailed     Readiness = "failed"
)
