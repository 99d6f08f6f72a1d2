package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddWatchTargetRequestValidate(t *testing.T) {
	valid := AddWatchTargetRequest{TargetType: TargetRepository, TargetValue: "acme/gateway"}
	assert.NoError(t, valid.Validate())

	missingValue := AddWatchTargetRequest{TargetType: TargetUsername}
	assert.Error(t, missingValue.Validate())

	badType := AddWatchTargetRequest{TargetType: "team", TargetValue: "acme"}
	assert.Error(t, badType.Validate())
}

func TestBulkAddWatchTargetsRequestValidate(t *testing.T) {
	valid := BulkAddWatchTargetsRequest{Targets: []AddWatchTargetRequest{
		{TargetType: TargetUsername, TargetValue: "alice"},
		{TargetType: TargetOrganization, TargetValue: "acme"},
	}}
	assert.NoError(t, valid.Validate())

	empty := BulkAddWatchTargetsRequest{}
	assert.Error(t, empty.Validate())

	// dive catches a bad element inside an otherwise valid batch
	mixed := BulkAddWatchTargetsRequest{Targets: []AddWatchTargetRequest{
		{TargetType: TargetUsername, TargetValue: "alice"},
		{TargetType: "team", TargetValue: "acme"},
	}}
	assert.Error(t, mixed.Validate())
}

func TestEngagementRequestValidate(t *testing.T) {
	for _, action := range []string{"message_sent", "skipped", "dismissed"} {
		req := EngagementRequest{Target: "alice", Action: action}
		assert.NoError(t, req.Validate(), action)
	}

	assert.Error(t, (&EngagementRequest{Action: "skipped"}).Validate())
	assert.Error(t, (&EngagementRequest{Target: "alice", Action: "ignored"}).Validate())
}
