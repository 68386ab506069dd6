package lesson

// Kind identifies one of the three fixed steps of a session.
type Kind int

const (
	KindExplanation Kind = iota
	KindExample
	KindTask
)

// StepCount is the number of steps in every session.
const StepCount = 3

// String returns the step label shown to the learner.
func (k Kind) String() string {
	switch k {
	case KindExplanation:
		return "Объяснение"
	case KindExample:
		return "Пример"
	case KindTask:
		return "Задание"
	default:
		return "?"
	}
}

// Step is a single lesson step: the prompt sent to the AI backend and the
// phrases rotated on screen while the request is in flight.
type Step struct {
	Kind          Kind
	Prompt        string
	LoaderPhrases []string
}
