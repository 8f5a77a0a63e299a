package human

import "context"

// Scripted is a Surface fed from pre-queued responses, for tests and
// non-interactive drivers. Exhausted queues return zero values, which the
// workflow treats as no feedback / unknown decision.
type Scripted struct {
	Feedback  []string
	Decisions []Decision
	Edits     []string

	Presented []Candidate
}

func (s *Scripted) PresentCandidate(ctx context.Context, c Candidate) error {
	s.Presented = append(s.Presented, c)
	return ctx.Err()
}

func (s *Scripted) PromptFeedback(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.Feedback) == 0 {
		return "", nil
	}
	next := s.Feedback[0]
	s.Feedback = s.Feedback[1:]
	return next, nil
}

func (s *Scripted) PromptDecision(ctx context.Context) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return DecisionUnknown, err
	}
	if len(s.Decisions) == 0 {
		return DecisionUnknown, nil
	}
	next := s.Decisions[0]
	s.Decisions = s.Decisions[1:]
	return next, nil
}

func (s *Scripted) PromptManualEdit(ctx context.Context, current string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.Edits) == 0 {
		return current, nil
	}
	next := s.Edits[0]
	s.Edits = s.Edits[1:]
	return next, nil
}
