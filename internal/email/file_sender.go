package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileEmailSender appends every email to a log file.
type FileEmailSender struct {
	mu       sync.Mutex
	filePath string
}

// NewFileEmailSender creates the log file's directory if needed.
func NewFileEmailSender(filePath string) (*FileEmailSender, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("email log file path cannot be empty")
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for email log file '%s': %w", dir, err)
	}
	return &FileEmailSender{filePath: filePath}, nil
}

func (s *FileEmailSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open email log file: %w", err)
	}
	defer file.Close()

	var entry strings.Builder
	fmt.Fprintf(&entry, "--- Email Logged at %s (To: %v, Template: %s, Subject: %s) ---\n",
		time.Now().Format(time.RFC3339Nano), msg.To, msg.TemplateID, msg.Subject)
	entry.Write(msg.Raw)
	entry.WriteString("\n--- End Logged Email ---\n\n")

	if _, err := file.WriteString(entry.String()); err != nil {
		return fmt.Errorf("failed to write email to log file: %w", err)
	}
	return nil
}
