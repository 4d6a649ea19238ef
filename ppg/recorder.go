package ppg

// Recorder consumes the samples of one finger-on session.
type Recorder interface {
	StopRecording() error
	StartRecording() error
	WriteSample(Sample) error
	CheckCanRecord() error
}

type NoWriteRecorder struct {
}

func (*NoWriteRecorder) StopRecording() error     { return nil }
func (*NoWriteRecorder) StartRecording() error    { return nil }
func (*NoWriteRecorder) WriteSample(Sample) error { return nil }
func (*NoWriteRecorder) CheckCanRecord() error    { return nil }
