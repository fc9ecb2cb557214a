package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/plotbuddy/ai/observability/logging"
	"github.com/hrygo/plotbuddy/store"
)

const (
	profileTemplate = "📊 Profile Overview:\n" +
		"👤 Subscription: %s\n" +
		"📚 Stories Remaining: %d\n" +
		"❤️ Favorite Genres: %s\n" +
		"✍️ Stories Created: %d\n" +
		"🌟 Member Since: %s"
	profileErrorMessage = "⚠️ Sorry, there was an error accessing your profile."
)

// ProfileAgent shows the user's account overview.
type ProfileAgent struct {
	store *store.Store
}

func NewProfileAgent(st *store.Store) *ProfileAgent {
	return &ProfileAgent{store: st}
}

func (a *ProfileAgent) Name() string {
	return AgentProfile
}

func (a *ProfileAgent) Process(ctx context.Context, req *Request) (*Response, error) {
	p, err := a.store.GetUserProfile(ctx, req.UserID)
	if err != nil {
		logging.FromContext(ctx).Error("failed to load profile", "error", err)
		return &Response{Message: profileErrorMessage, Agent: AgentProfile}, nil
	}
	return &Response{
		Success: true,
		Output:  FormatProfile(p),
		Agent:   AgentProfile,
		Data:    p,
	}, nil
}

// FormatProfile renders the profile overview.
func FormatProfile(p *store.UserProfile) string {
	return fmt.Sprintf(profileTemplate,
		p.Subscription,
		p.StoriesRemaining,
		strings.Join(p.FavoriteGenres, ", "),
		p.CreatedStories,
		p.MemberSince,
	)
}
