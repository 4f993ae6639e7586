package transport

import "log"

// Loader shows progress while a request is running.
type Loader interface {
	Show(message string)
	Hide()
}

// LogLoader reports progress to the standard logger.
type LogLoader struct{}

func (LogLoader) Show(message string) {
	if message == "" {
		message = "loading"
	}
	log.Printf("%s...", message)
}

func (LogLoader) Hide() {}

type noopLoader struct{}

func (noopLoader) Show(string) {}
func (noopLoader) Hide()       {}
