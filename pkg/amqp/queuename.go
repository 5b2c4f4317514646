package amqp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// QueueName returns the queue name for prefix, creating and caching it on
// first use.
//
// Queues persist on the AMQP server but the name can only be provided by the
// consumer, so the generated "<prefix>.<uuid>" name is stored in a file
// named after the prefix under dir. Later runs read the file back and
// reattach to the queue they created earlier.
func QueueName(dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create queues dir: %w", err)
	}

	queueFile := filepath.Join(dir, prefix)
	b, err := os.ReadFile(queueFile)
	if err == nil {
		return strings.TrimSpace(string(b)), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read queue name cache: %w", err)
	}

	name := fmt.Sprintf("%s.%s", prefix, uuid.New())
	if err := os.WriteFile(queueFile, []byte(name), 0o644); err != nil {
		return "", fmt.Errorf("write queue name cache: %w", err)
	}
	return name, nil
}
