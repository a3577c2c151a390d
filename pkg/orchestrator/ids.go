package orchestrator

import "github.com/google/uuid"

func newUploadID() string {
	return uuid.New().String()
}
