package supervisor

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"time"

	"rkinit/internal/config"
	"rkinit/internal/console"
	"rkinit/pkg/metrics"
	"rkinit/pkg/rklog"
)

// logWriter reads one child output stream line by line, prepends a
// timestamp, and writes it to both the Console Sink and a per-service log
// file whose size is capped by in-place truncation (§4.3).
type logWriter struct {
	sink    *console.Sink
	service string
	ext     string
	logDir  string
}

func newLogWriter(sink *console.Sink, service, ext, logDir string) *logWriter {
	return &logWriter{sink: sink, service: service, ext: ext, logDir: logDir}
}

func (w *logWriter) streamName() string {
	if w.ext == config.StderrLogExt {
		return "stderr"
	}
	return "stdout"
}

// run owns pipe exclusively until it returns EOF or an I/O error, at which
// point the writer terminates; the Supervisor does not observe this
// directly and starts fresh writers on the next restart.
func (w *logWriter) run(pipe io.ReadCloser) {
	defer func() {
		if r := recover(); r != nil {
			rklog.WithService(w.service).Error().Interface("panic", r).Msg("log writer panicked")
		}
	}()

	path := filepath.Join(w.logDir, w.service+"."+w.ext)
	file, err := os.Create(path)
	if err != nil {
		rklog.WithService(w.service).Err(err).Msg("can't create log file")
		return
	}
	defer file.Close()

	reader := bufio.NewReader(pipe)
	for {
		line, rerr := reader.ReadString('\n')
		if line != "" {
			w.emit(file, line)
		}
		if rerr != nil {
			w.sink.Info("%s closed %s", w.service, w.streamName())
			return
		}
	}
}

// emit formats one line, performs the rotation check, and writes it to both
// the console and the log file, in that order per §4.3 step 5.
func (w *logWriter) emit(file *os.File, line string) {
	ts := time.Now().UTC().Format(time.RFC3339)
	formatted := "[" + ts + " " + w.service + "] " + line

	if info, err := file.Stat(); err == nil && info.Size() > config.LogSizeCap {
		if err := file.Truncate(0); err == nil {
			file.Seek(0, io.SeekStart)
			metrics.LogRotationsTotal.WithLabelValues(w.service, w.streamName()).Inc()
		}
	}

	w.sink.Line(formatted)
	if _, err := file.WriteString(formatted); err != nil {
		rklog.WithService(w.service).Err(err).Msg("log write failed")
	}
}
