package form

import (
	"context"
	"fmt"

	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

// EventType names one user interaction.
type EventType string

const (
	EventSetJobTitle        EventType = "set_job_title"
	EventSetExperienceLevel EventType = "set_experience_level"
	EventAddSkill           EventType = "add_skill"
	EventRemoveSkill        EventType = "remove_skill"
	EventSetResumeFormat    EventType = "set_resume_format"
	EventSubmit             EventType = "submit"
)

// Event is one user interaction with its payload. Value is ignored for Submit.
type Event struct {
	Type  EventType `json:"type"`
	Value string    `json:"value"`
}

// Handle dispatches ev to the matching handler.
func (c *Controller) Handle(ctx context.Context, st *session.State, ev Event) error {
	switch ev.Type {
	case EventSetJobTitle:
		c.SetJobTitle(st, ev.Value)
	case EventSetExperienceLevel:
		return c.SetExperienceLevel(st, ev.Value)
	case EventAddSkill:
		c.AddSkill(st, ev.Value)
	case EventRemoveSkill:
		c.RemoveSkill(st, ev.Value)
	case EventSetResumeFormat:
		return c.SetResumeFormat(st, ev.Value)
	case EventSubmit:
		return c.Submit(ctx, st)
	default:
		return &model.ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("unknown event type %q", ev.Type),
		}
	}
	return nil
}
