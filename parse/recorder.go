package parse

// Recorder is a Listener that keeps every recognition failure in the order
// it was raised.
type Recorder struct {
	failures []*RecognitionError
}

func (r *Recorder) RecognitionFailed(err *RecognitionError) {
	r.failures = append(r.failures, err)
}

func (r *Recorder) Failures() []*RecognitionError {
	return r.failures
}

// Deepest returns the failure raised furthest into the input, preferring the
// earliest one on ties. Recovery notifications are ignored.
func (r *Recorder) Deepest() *RecognitionError {
	var deepest *RecognitionError
	for _, f := range r.failures {
		if f.Recovered {
			continue
		}
		if deepest == nil || f.Index > deepest.Index {
			deepest = f
		}
	}
	return deepest
}

func (r *Recorder) Reset() {
	r.failures = nil
}
