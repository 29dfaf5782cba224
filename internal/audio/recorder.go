package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes captured chunks to a 16-bit mono WAV file. The capture
// worker feeds it one chunk per read, so Write sees chunks in capture order.
type Recorder struct {
	sampleRate int
	chunkSize  int

	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *goaudio.IntBuffer // Reusable buffer for format conversion
}

// NewRecorder creates a recorder for the session's sample rate and chunk
// size. No file is opened until Start.
func NewRecorder(sampleRate, chunkSize int) *Recorder {
	return &Recorder{
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
	}
}

func (r *Recorder) Start(filename string) error {
	if atomic.LoadInt32(&r.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	r.outputFile = file

	r.wavEncoder = wav.NewEncoder(file, r.sampleRate, 16, 1, 1)

	r.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  r.sampleRate,
		},
		Data: make([]int, r.chunkSize),
	}

	atomic.StoreInt32(&r.isRecording, 1)

	return nil
}

// Write appends one chunk to the recording. It is a no-op when recording is
// not active or the chunk is empty, so the capture path can call it
// unconditionally.
func (r *Recorder) Write(chunk *Chunk) error {
	if atomic.LoadInt32(&r.isRecording) == 0 || chunk.Empty() {
		return nil
	}

	if cap(r.sampleBuf.Data) < len(chunk.Data) {
		r.sampleBuf.Data = make([]int, len(chunk.Data))
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(chunk.Data)]
	for i, sample := range chunk.Data {
		r.sampleBuf.Data[i] = int(sample)
	}

	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

func (r *Recorder) Stop() error {
	if atomic.LoadInt32(&r.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&r.isRecording, 0)

	if r.wavEncoder != nil {
		if err := r.wavEncoder.Close(); err != nil {
			return err
		}
		r.wavEncoder = nil
	}

	if r.outputFile != nil {
		if err := r.outputFile.Close(); err != nil {
			return err
		}
		r.outputFile = nil
	}

	return nil
}

// Recording reports whether a recording is in flight.
func (r *Recorder) Recording() bool {
	return atomic.LoadInt32(&r.isRecording) == 1
}
