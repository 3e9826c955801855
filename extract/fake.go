package extract

import "context"

// FakeService returns a canned response or a canned error, for tests.
type FakeService struct {
	Response []byte
	Err      error

	// LastRequest records what the pipeline sent.
	LastRequest Request
	Calls       int
}

func NewFake(response []byte, err error) *FakeService {
	return &FakeService{Response: response, Err: err}
}

func (f *FakeService) Name() string { return "fake" }

func (f *FakeService) Generate(_ context.Context, req Request) ([]byte, error) {
	f.LastRequest = req
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Response, nil
}
