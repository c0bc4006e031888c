package generation

import (
	"context"
	"strings"
)

// MockClient returns canned outlines without calling any provider, so the
// pipeline can run end to end with no API key configured.
type MockClient struct{}

func (MockClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	if strings.Contains(req.Prompt, "CURRENT SEGMENT:") {
		return "1. Regenerated Segment (15 min)\n• Replacement activity\n• Quick debrief", nil
	}

	var sb strings.Builder
	sb.WriteString("Workshop Outline\n\n")
	sb.WriteString("1. Welcome and Introductions (10 min)\n")
	sb.WriteString("• Facilitator welcome\n")
	sb.WriteString("• Participant round\n\n")
	sb.WriteString("2. Working Session (40 min)\n")
	sb.WriteString("• Core exercise\n")
	sb.WriteString("• Group discussion\n\n")
	sb.WriteString("3. Wrap Up (10 min)\n")
	sb.WriteString("• Key takeaways\n")
	return sb.String(), nil
}
