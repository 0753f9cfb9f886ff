package render

// Task is a single render running in the background.
type Task struct {
	ID       string
	Endpoint string

	done   chan struct{}
	result *Result
}

// Done returns a channel that is closed when the render has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the render has finished and returns its outcome.
func (t *Task) Wait() (*Result, error) {
	<-t.done
	return t.result, t.result.Err
}
