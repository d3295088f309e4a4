package agent

import "context"

// MockReviewer is a test double that replays a scripted sequence of
// responses and records every request it receives.
type MockReviewer struct {
	Responses []Response
	Errs      []error
	Requests  []Request

	calls int
}

func (m *MockReviewer) Name() string { return "mock" }

func (m *MockReviewer) Review(_ context.Context, req Request) (Response, error) {
	m.Requests = append(m.Requests, req)
	i := m.calls
	m.calls++

	var err error
	if i < len(m.Errs) {
		err = m.Errs[i]
	}
	var resp Response
	if i < len(m.Responses) {
		resp = m.Responses[i]
	} else if len(m.Responses) > 0 {
		resp = m.Responses[len(m.Responses)-1]
	}
	return resp, err
}

// Calls returns how many times Review was invoked.
func (m *MockReviewer) Calls() int { return m.calls }
