package llm

import "context"

// MockClient is a test double that returns canned responses.
type MockClient struct {
	Response string
	Err      error
	Calls    []MockCall
}

// MockCall records one GenerateResponse invocation.
type MockCall struct {
	Prompt        string
	SystemMessage string
	Temperature   float64
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) GenerateResponse(_ context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	m.Calls = append(m.Calls, MockCall{Prompt: prompt, SystemMessage: systemMessage, Temperature: temperature})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockClient) GetModel() string {
	return "mock"
}
