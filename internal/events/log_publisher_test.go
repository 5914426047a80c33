package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, LogPublisher{}.PublishLedgerEntry(context.Background(), sampleEntry()))
}
