package download

import (
	"io"
	"time"
)

// ProgressReader wraps an io.Reader to track transfer progress. The callback
// fires at most once per interval while data flows, and once more at EOF so
// callers always observe the final byte count.
type ProgressReader struct {
	reader    io.Reader
	total     int64
	current   int64
	callback  func(current, total, speed int64)
	interval  time.Duration
	start     time.Time
	lastTime  time.Time
	lastBytes int64
	finished  bool
}

// NewProgressReader creates a new progress tracking reader
func NewProgressReader(reader io.Reader, total int64, callback func(current, total, speed int64)) *ProgressReader {
	now := time.Now()
	return &ProgressReader{
		reader:   reader,
		total:    total,
		callback: callback,
		interval: time.Second,
		start:    now,
		lastTime: now,
	}
}

// SetInterval changes how often the callback fires while reading
func (pr *ProgressReader) SetInterval(d time.Duration) {
	pr.interval = d
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)

	now := time.Now()
	if now.Sub(pr.lastTime) >= pr.interval {
		elapsed := now.Sub(pr.lastTime)
		bytesDiff := pr.current - pr.lastBytes
		speed := int64(float64(bytesDiff) / elapsed.Seconds())

		if pr.callback != nil {
			pr.callback(pr.current, pr.total, speed)
		}

		pr.lastTime = now
		pr.lastBytes = pr.current
	}

	if err == io.EOF && !pr.finished {
		pr.finished = true
		if pr.callback != nil {
			elapsed := now.Sub(pr.start).Seconds()
			var speed int64
			if elapsed > 0 {
				speed = int64(float64(pr.current) / elapsed)
			}
			pr.callback(pr.current, pr.total, speed)
		}
	}

	return n, err
}

// Current returns the number of bytes read so far
func (pr *ProgressReader) Current() int64 {
	return pr.current
}
