package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger writes colored, categorised lines to stdout and plain copies to a
// log file when LOG_FILE is set.
type Logger struct {
	file *os.File

	info    *color.Color
	warn    *color.Color
	err     *color.Color
	debug   *color.Color
	process *color.Color
}

func NewLogger() *Logger {
	l := &Logger{
		info:    color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		debug:   color.New(color.FgCyan),
		process: color.New(color.FgMagenta, color.Bold),
	}

	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			l.file = f
		}
	}

	return l
}

func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}

func (l *Logger) write(c *color.Color, level, category, msg string) {
	line := fmt.Sprintf("[%s] [%s] [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level, category, msg)
	c.Println(line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

func (l *Logger) Info(category, msg string)  { l.write(l.info, "INFO", category, msg) }
func (l *Logger) Warn(category, msg string)  { l.write(l.warn, "WARN", category, msg) }
func (l *Logger) Error(category, msg string) { l.write(l.err, "ERROR", category, msg) }
func (l *Logger) Debug(category, msg string) {
	if os.Getenv("DEBUG") != "" {
		l.write(l.debug, "DEBUG", category, msg)
	}
}

func (l *Logger) Fatal(category, msg string) {
	l.write(l.err, "FATAL", category, msg)
	l.Close()
	os.Exit(1)
}

// LogProcess marks lifecycle steps (startup, shutdown, component init).
func (l *Logger) LogProcess(stage, msg string) {
	l.write(l.process, "PROCESS", stage, msg)
}

func (l *Logger) LogDatabase(action, target, msg string) {
	l.write(l.info, "DB", fmt.Sprintf("%s:%s", action, target), msg)
}

func (l *Logger) LogKafka(action, component, msg string) {
	l.write(l.info, "KAFKA", fmt.Sprintf("%s:%s", action, component), msg)
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.write(l.info, "API", method, fmt.Sprintf("%s - %s (%s)", path, status, duration))
}

func (l *Logger) LogPayment(action, id, msg string) {
	l.write(l.info, "PAYMENT", fmt.Sprintf("%s:%s", action, id), msg)
}

func (l *Logger) LogSecurity(event, msg string) {
	l.write(l.warn, "SECURITY", event, msg)
}
