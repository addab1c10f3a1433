package work

import (
	"bytes"
	"testing"
	"time"

	"github.com/raksha-app/raksha/server/models"
	"github.com/stretchr/testify/assert"
)

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	adapter := NewWorkerAdapter("UTC")
	outputBuffer := new(bytes.Buffer)

	// Register job function
	writeToBuffer := func(m map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello")
		return err
	}
	adapter.Register("write_to_buffer", writeToBuffer)

	err := adapter.Perform(JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{},
	})
	assert.Nil(t, err)
	assert.Empty(t, outputBuffer.String(), "Expected outputBuffer to be empty")

	adapter.Start()

	// Wait for job to be processed
	time.Sleep(2 * time.Second)

	adapter.Stop()

	assert.Equal(t, "Hello", outputBuffer.String(), "Expected job to write to outputBuffer")

	job, err := models.LastJob(models.SUCCESSFUL_JOB, false)
	assert.Nil(t, err)
	assert.Equal(t, "write_to_buffer", job.Name)
}

func TestPerformSwallowsDuplicates(t *testing.T) {
	models.InitializeTestDb()

	adapter := NewWorkerAdapter("UTC")
	adapter.Register("write_to_buffer", func(m map[string]interface{}) error { return nil })

	job := JobParams{Name: "write_to_buffer", Handler: "write_to_buffer", Args: map[string]interface{}{}}

	assert.Nil(t, adapter.Perform(job))
	assert.Nil(t, adapter.Perform(job), "a duplicate enqueue is a no-op, not an error")
}
